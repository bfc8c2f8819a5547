// Package boot runs named fallible initialization steps against a
// cleanup registry.
//
// A Sequence is an ordered list of steps. Each step either succeeds,
// registering cleanups with the shared closer for whatever it acquired,
// or fails and aborts the run. On failure the closer is closed before
// Up returns, so every resource acquired by earlier steps is released
// in exactly the reverse order of acquisition. On success the live
// closer is handed back to the caller for a later explicit shutdown.
//
//	seq := boot.New("agent").
//	    Add("led", openLED).
//	    Add("announce", startMDNS).
//	    Add("httpd", startServer)
//
//	c, err := seq.Up(ctx)
//	if err != nil {
//	    return err // already unwound
//	}
//	defer c.Close()
//
// Steps must register the cleanup for a resource immediately after
// acquiring it, before doing any further fallible work; the Acquire
// helper in the closer package enforces this. If a registration is
// refused the step has to release the resource itself and return the
// error.
package boot
