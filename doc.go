/*
Package kites3 provides a callback driven request engine for S3 compatible object stores, a multiplexer
to run many of those requests concurrently, and a small bucket and object client built on top.

There are no exports in the root package.

Packages:
	- pkg/engine - pooled request descriptors, canonical header composition and response delivery
	- pkg/multiplex - runs registered requests concurrently on a bounded set of workers
	- pkg/s3 - bucket and object operations, with a fake server in pkg/s3/s3test
	- pkg/amz - canned ACLs, key encoding, header composition and response header parsing

CLI tools part of `cmd/` include:
	- kites3 - bucket and object commands against any endpoint
	- testServer - serves the fake S3 endpoint on a range of ports for manual testing and benchmarking
*/
package kites3
