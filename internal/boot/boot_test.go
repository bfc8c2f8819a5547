package boot

import (
	"context"
	"errors"
	"testing"

	"github.com/muurk/tapnode/internal/closer"
)

func TestUpRunsStepsInOrder(t *testing.T) {
	var ran []string

	seq := New("test").
		Add("one", func(ctx context.Context, c *closer.Closer) error {
			ran = append(ran, "one")
			return nil
		}).
		Add("two", func(ctx context.Context, c *closer.Closer) error {
			ran = append(ran, "two")
			return nil
		})

	c, err := seq.Up(context.Background())
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	defer c.Close()

	if len(ran) != 2 || ran[0] != "one" || ran[1] != "two" {
		t.Errorf("step order = %v, want [one two]", ran)
	}
}

func TestUpFailureUnwindsInReverse(t *testing.T) {
	var events []string
	stepErr := errors.New("no ip address")

	seq := New("test").
		Add("led", func(ctx context.Context, c *closer.Closer) error {
			return c.Add(func() { events = append(events, "close led") })
		}).
		Add("store", func(ctx context.Context, c *closer.Closer) error {
			return c.Add(func() { events = append(events, "close store") })
		}).
		Add("network", func(ctx context.Context, c *closer.Closer) error {
			return stepErr
		}).
		Add("httpd", func(ctx context.Context, c *closer.Closer) error {
			t.Error("step after failure must not run")
			return nil
		})

	c, err := seq.Up(context.Background())
	if !errors.Is(err, stepErr) {
		t.Fatalf("Up() error = %v, want %v", err, stepErr)
	}
	if c != nil {
		t.Error("Up() returned a closer alongside an error")
	}

	want := []string{"close store", "close led"}
	if len(events) != 2 || events[0] != want[0] || events[1] != want[1] {
		t.Errorf("unwind order = %v, want %v", events, want)
	}
}

func TestUpErrorNamesStep(t *testing.T) {
	seq := New("agent").
		Add("announce", func(ctx context.Context, c *closer.Closer) error {
			return errors.New("mdns refused")
		})

	_, err := seq.Up(context.Background())
	if err == nil {
		t.Fatal("Up() error = nil, want step error")
	}
	if got := err.Error(); got != `boot agent: step "announce": mdns refused` {
		t.Errorf("error = %q", got)
	}
}

func TestUpStepWithoutCleanups(t *testing.T) {
	seq := New("test").
		Add("fingerprint", func(ctx context.Context, c *closer.Closer) error {
			return nil // pure computation, nothing to release
		})

	c, err := seq.Up(context.Background())
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	c.Close()
}

func TestUpStepWithMultipleCleanups(t *testing.T) {
	var events []string

	seq := New("test").
		Add("wifi", func(ctx context.Context, c *closer.Closer) error {
			if err := c.Add(func() { events = append(events, "netif down") }); err != nil {
				return err
			}
			return c.Add(func() { events = append(events, "driver down") })
		}).
		Add("boom", func(ctx context.Context, c *closer.Closer) error {
			return errors.New("boom")
		})

	if _, err := seq.Up(context.Background()); err == nil {
		t.Fatal("Up() error = nil, want boom")
	}

	want := []string{"driver down", "netif down"}
	if len(events) != 2 || events[0] != want[0] || events[1] != want[1] {
		t.Errorf("unwind order = %v, want %v", events, want)
	}
}

func TestUpCancelledContext(t *testing.T) {
	closed := false

	ctx, cancel := context.WithCancel(context.Background())

	seq := New("test").
		Add("first", func(ctx context.Context, c *closer.Closer) error {
			cancel()
			return c.Add(func() { closed = true })
		}).
		Add("second", func(ctx context.Context, c *closer.Closer) error {
			t.Error("step ran after cancellation")
			return nil
		})

	_, err := seq.Up(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Up() error = %v, want context.Canceled", err)
	}
	if !closed {
		t.Error("pending cleanup not run after cancellation")
	}
}

func TestUpClosedRegistryStaysUsableForShutdown(t *testing.T) {
	var events []string

	seq := New("test").
		Add("res", func(ctx context.Context, c *closer.Closer) error {
			return c.Add(func() { events = append(events, "release") })
		})

	c, err := seq.Up(context.Background())
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	c.Close()
	c.Close() // second shutdown is a no-op

	if len(events) != 1 {
		t.Errorf("release ran %d times, want 1", len(events))
	}
}

func TestUpRefusedRegistrationAbortsStep(t *testing.T) {
	released := false

	seq := New("test", closer.WithLimit(1)).
		Add("first", func(ctx context.Context, c *closer.Closer) error {
			return c.Add(func() {})
		}).
		Add("second", func(ctx context.Context, c *closer.Closer) error {
			_, err := closer.Acquire(c,
				func() (int, error) { return 1, nil },
				func(int) { released = true },
			)
			return err
		})

	_, err := seq.Up(context.Background())
	if !errors.Is(err, closer.ErrNoSpace) {
		t.Fatalf("Up() error = %v, want ErrNoSpace", err)
	}
	if !released {
		t.Error("step leaked its resource after refused registration")
	}
}
