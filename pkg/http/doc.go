/*
Package http provides the fasthttp backed transport handle driven by the request engine.

A Handle is the unit the engine pools. It owns a fasthttp.Client, and with it a private set of
keep-alive connections, plus one fasthttp.Request/Response pair that is reset between exchanges.
The engine drives a handle through Reset, Configure, Attach and Perform; the handle knows nothing
about pooling or callbacks.

Response headers are handed back as raw header lines, the status line first and a bare "\r\n"
last, so the engine's header parser sees the same line stream regardless of the transport in use.

There are a few quirks worth knowing about:

 - Only the final response of a redirect chain is replayed to the header function
 - Cancellation of the context is only observed before the exchange and between redirects. Use a
   context deadline to bound an exchange
 - LowSpeedTime is enforced per read on the connection, Timeout bounds the whole exchange

*/
package http
