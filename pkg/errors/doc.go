/*
The errors package provides the status enumeration and typed error shared by the request engine,
the amz header helpers and the bucket/object callers.

Failures are split into kinds. Resource, validation and registration errors are returned
synchronously and never start the callback sequence. Exchange errors are only ever delivered
through the completion callback as a Status.

Usage

	import errors2 "github.com/assetnote/kites3/pkg/errors"

	...

	if err := eng.Do(ctx, params, handler); err != nil {
		if errors.Is(err, errors2.ErrBadMetaHeader) {
			return fmt.Errorf("fix your metadata: %w", err)
		}
		errors2.PrintError(err, 0)
	}

*/
package errors
