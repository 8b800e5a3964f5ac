/*
Package testServer serves the fake S3 endpoint from pkg/s3/s3test on a range of ports so the kites3 CLI
can be exercised and benchmarked without a real object store.

Virtual host style requests are expected against <bucket>.s3.test, so point the host at a resolver entry
for it or use path style addressing.

	go run ./cmd/testServer -p 14000-14001 -b photos
	kites3 --host localhost:14000 --https=false --path-style object head photos a.jpg

The server is used for testing, and should not be used in a production environment.
*/
package main
