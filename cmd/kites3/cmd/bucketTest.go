package cmd

import (
	"github.com/assetnote/kites3/internal/ops"
	"github.com/assetnote/kites3/pkg/context"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/spf13/cobra"
)

var bucketTestCmd = &cobra.Command{
	Use:   "test BUCKET",
	Short: "check a bucket is accessible and print its location",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := ops.TestBucket(context.Context(), args[0], globalOptions()...); err != nil {
			log.Fatal().Err(err).Str("bucket", args[0]).Msg("bucket test failed")
		}
	},
}

func init() {
	bucketCmd.AddCommand(bucketTestCmd)
}
