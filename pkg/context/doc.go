/*
Package context wraps the native context package to catch interrupts in CLI commands.

The first SIGINT cancels the global context so a command can stop issuing requests and let the
multiplexer report the remaining ones as interrupted. A second signal exits immediately.

	import "github.com/assetnote/kites3/pkg/context"

	...

	if _, err := ops.HeadObjects(context.Context(), bucket, keys, opts...); err != nil {
		log.Fatal().Err(err).Msg("failed to head objects")
	}
*/
package context
