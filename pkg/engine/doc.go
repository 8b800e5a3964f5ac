/*
Package engine turns logical object storage requests into correctly headered HTTP exchanges.

The engine keeps a bounded LIFO pool of request descriptors, each exclusively owning a reusable
transport handle. A request is either performed on the calling goroutine with Do, or registered
with an externally owned Multiplexer with Add.

	e, err := engine.New(engine.UserAgentInfo("my-tool"))
	if err != nil {
		return err
	}
	defer e.Close()

	err = e.Do(ctx, engine.Params{Method: "HEAD", Bucket: "bucket", Key: "some key"}, engine.Handler{
		OnHeaders: func(h *amz.ResponseHeaders) {
			fmt.Println(h.ETag)
		},
		OnComplete: func(res engine.Result) {
			fmt.Println(res.Status, res.HTTPCode)
		},
	})

Errors returned synchronously are resource or validation errors and no callback is made for them.
Once an exchange has been started its outcome is only ever reported through the handler: OnHeaders
exactly once, then OnComplete exactly once.
*/
package engine
