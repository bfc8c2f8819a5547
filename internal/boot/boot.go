package boot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tapnode/internal/closer"
	"github.com/muurk/tapnode/internal/logging"
)

// StepFunc performs one initialization step. Cleanups for anything the
// step acquires are registered with c before the next step runs.
type StepFunc func(ctx context.Context, c *closer.Closer) error

// Step is a named initialization step.
type Step struct {
	Name string
	Run  StepFunc
}

// Sequence is an ordered list of initialization steps sharing one
// cleanup registry. Build it with New and Add, then run it with Up.
type Sequence struct {
	name  string
	steps []Step
	opts  []closer.Option
}

// New creates an empty sequence. name identifies the sequence in logs.
// Closer options are applied to the registry Up creates.
func New(name string, opts ...closer.Option) *Sequence {
	return &Sequence{name: name, opts: opts}
}

// Add appends a named step and returns the sequence for chaining.
func (s *Sequence) Add(name string, run StepFunc) *Sequence {
	s.steps = append(s.steps, Step{Name: name, Run: run})
	return s
}

// Up creates a closer and runs every step in order. The first failing
// step aborts the run: the closer is closed, releasing everything the
// earlier steps acquired in reverse order, and the step's error is
// returned wrapped with its name. Context cancellation between steps is
// treated the same way.
//
// On success the closer is returned live, holding the shutdown
// obligations of the whole sequence.
func (s *Sequence) Up(ctx context.Context) (*closer.Closer, error) {
	c := closer.New(s.opts...)

	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			c.Close()
			return nil, fmt.Errorf("boot %s: before step %q: %w", s.name, step.Name, err)
		}

		start := time.Now()
		if err := step.Run(ctx, c); err != nil {
			logging.Error("Boot step failed",
				zap.String("sequence", s.name),
				zap.String("step", step.Name),
				zap.Int("pending_cleanups", c.Len()),
				zap.Error(err),
			)
			c.Close()
			return nil, fmt.Errorf("boot %s: step %q: %w", s.name, step.Name, err)
		}

		logging.Debug("Boot step complete",
			zap.String("sequence", s.name),
			zap.String("step", step.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("pending_cleanups", c.Len()),
		)
	}

	logging.Info("Boot sequence complete",
		zap.String("sequence", s.name),
		zap.Int("steps", len(s.steps)),
		zap.Int("pending_cleanups", c.Len()),
	)

	return c, nil
}
