/*
Package multiplex drives many engine requests from a single goroutine.

Requests are registered with engine.Add and progress when the owner of the Context calls RunOnce or
Run. Exchanges run concurrently, up to the configured concurrency, and every callback is made on the
driving goroutine.

	m := multiplex.New(multiplex.Concurrency(8))
	defer m.Close()

	for _, key := range keys {
		if _, err := e.Add(engine.Params{Method: "HEAD", Bucket: bucket, Key: key}, handler, m); err != nil {
			return err
		}
	}
	if err := m.Run(ctx); err != nil {
		return err
	}

Remove abandons a request. The request still receives both callbacks, with StatusInterrupted.
*/
package multiplex
