package cmd

import (
	"os"

	"github.com/assetnote/kites3/internal/ops"
	"github.com/assetnote/kites3/pkg/context"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/spf13/cobra"
)

var objectHeadCmd = &cobra.Command{
	Use:   "head BUCKET KEY [KEY...]",
	Short: "fetch the headers of one or more objects concurrently",
	Long: `issue a HEAD request for every key. up to --concurrency requests are in flight at once.
pass - as a key to read newline separated keys from stdin

usage:
kites3 object head photos a.jpg b.jpg
cat keys.txt | kites3 object head photos -`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		keys, err := readKeys(args[1:], os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read keys")
		}
		if _, err := ops.HeadObjects(context.Context(), args[0], keys, globalOptions()...); err != nil {
			log.Fatal().Err(err).Str("bucket", args[0]).Msg("failed to head objects")
		}
	},
}

func init() {
	objectCmd.AddCommand(objectHeadCmd)
}
