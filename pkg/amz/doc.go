/*
Package amz holds the protocol text helpers used by the request engine: object key encoding for
URL paths, composition of the canonical x-amz-* header set that request signers consume, the
incremental response header parser and decoding of error documents.

Nothing in this package performs I/O. The CanonicalHeaders and ResponseHeaders types are owned
by a single request descriptor at a time and are not safe for concurrent mutation.
*/
package amz
