// Package closer provides a defer-style cleanup registry for staged
// resource initialization.
//
// A Closer holds zero-argument cleanup functions and invokes them in
// reverse order of registration, similar to Go's defer but scoped to an
// explicit handle instead of a single function call. This makes it the
// backbone of multi-step initialization sequences where any step may
// fail: each step registers the release of whatever it acquired, and a
// single Close unwinds everything acquired so far.
//
// # Usage
//
//	c := closer.New()
//
//	f, err := os.Open(path)
//	if err != nil {
//	    c.Close()
//	    return err
//	}
//	if err := c.Add(func() { f.Close() }); err != nil {
//	    f.Close()
//	    c.Close()
//	    return err
//	}
//
//	// ... more steps, each registering its own cleanup ...
//
//	// On failure anywhere above, or at final shutdown:
//	c.Close() // releases everything, newest first
//
// The Acquire helper collapses the acquire-then-register pattern into
// one call and guarantees the resource is either registered or released
// before Acquire returns.
//
// # Ordering
//
// Cleanup functions run in exactly the reverse order of registration
// (last in, first invoked). The Closer owns only the obligation to call
// each function once; it knows nothing about the resources behind them.
//
// # Reuse
//
// Close empties the registry but leaves it usable: new functions may be
// registered and a later Close drains only those. Destroy closes and
// then invalidates the handle permanently.
//
// # Concurrency
//
// A Closer is not safe for concurrent use. Registration and close are
// expected to happen on a single goroutine, typically the one driving
// an initialization sequence. Cleanup functions must not call Add,
// Close or Destroy on the Closer that is running them.
package closer
