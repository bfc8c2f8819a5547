package closer

import (
	"errors"

	"github.com/muurk/tapnode/internal/logging"
)

var (
	// ErrNilCloser is returned when an operation is invoked on a nil handle.
	ErrNilCloser = errors.New("closer: nil handle")

	// ErrNilFunc is returned when a nil cleanup function is registered.
	ErrNilFunc = errors.New("closer: nil cleanup func")

	// ErrDestroyed is returned when registering on a destroyed handle.
	ErrDestroyed = errors.New("closer: handle destroyed")

	// ErrNoSpace is returned when the pending-cleanup limit is reached.
	// The rejected function is not registered; the caller remains
	// responsible for releasing the resource itself.
	ErrNoSpace = errors.New("closer: cleanup limit reached")
)

// Func is a cleanup function. It releases one previously acquired
// resource and must not fail; anything that can go wrong inside it has
// to be reported through its own side channel (typically a log call
// bound into the closure).
type Func func()

type item struct {
	fn   Func
	next *item
}

// Closer is a LIFO registry of pending cleanup functions.
// The zero value is not usable; create one with New.
type Closer struct {
	top       *item
	n         int
	limit     int // 0 = unlimited
	destroyed bool
}

// Option configures a Closer created by New.
type Option func(*Closer)

// WithLimit caps the number of cleanup functions the Closer will hold
// at once. Add returns ErrNoSpace once the cap is reached. A limit of
// zero or less means unlimited.
func WithLimit(n int) Option {
	return func(c *Closer) {
		c.limit = n
	}
}

// New creates an empty Closer.
func New(opts ...Option) *Closer {
	c := &Closer{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers fn to run before every function already registered.
// On error fn is not registered and the caller keeps the obligation to
// release the resource it guards.
func (c *Closer) Add(fn Func) error {
	if c == nil {
		return ErrNilCloser
	}
	if fn == nil {
		return ErrNilFunc
	}
	if c.destroyed {
		return ErrDestroyed
	}
	if c.limit > 0 && c.n >= c.limit {
		return ErrNoSpace
	}

	c.top = &item{fn: fn, next: c.top}
	c.n++
	return nil
}

// Close invokes every pending cleanup function, newest first, and
// empties the registry. Each node is unlinked before its function runs,
// so the functions already visited are gone even if a later one panics.
// Closing an empty or nil Closer is a no-op. The Closer stays usable:
// functions registered after a Close are drained by the next Close.
func (c *Closer) Close() {
	if c == nil {
		return
	}

	for c.top != nil {
		it := c.top
		c.top = it.next
		c.n--

		// A nil fn cannot be registered through Add; skip one
		// defensively should it ever appear.
		if it.fn != nil {
			it.fn()
		}
	}
}

// Destroy closes the registry and invalidates the handle. Subsequent
// Adds fail with ErrDestroyed. Destroy on a nil handle is a logged
// no-op.
func (c *Closer) Destroy() {
	if c == nil {
		logging.Warn("closer: Destroy called on nil handle")
		return
	}

	c.Close()
	c.destroyed = true
}

// Len reports the number of pending cleanup functions.
func (c *Closer) Len() int {
	if c == nil {
		return 0
	}
	return c.n
}

// Acquire runs acquire and, on success, immediately registers
// release(v) with c before returning the acquired value. If the
// registration is refused the resource is released on the spot and the
// registration error is returned, so a successful Acquire always means
// "acquired and registered" and a failed one never leaks.
func Acquire[T any](c *Closer, acquire func() (T, error), release func(T)) (T, error) {
	var zero T

	v, err := acquire()
	if err != nil {
		return zero, err
	}

	if err := c.Add(func() { release(v) }); err != nil {
		release(v)
		return zero, err
	}

	return v, nil
}
