/*
Package s3test provides an in memory fake of the S3 REST protocol served with fasthttp.

It is used by the tests of the s3 client and by the testServer command. It is not a complete or
faithful implementation of the protocol and should not be used outside of testing.

	srv := s3test.NewServer(nil)
	ln := fasthttputil.NewInmemoryListener()
	go fasthttp.Serve(ln, srv.Handler)
*/
package s3test
