package cmd

import (
	"github.com/assetnote/kites3/internal/ops"
	"github.com/assetnote/kites3/pkg/context"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/spf13/cobra"
)

var deleteYes = false

var bucketDeleteCmd = &cobra.Command{
	Use:   "delete BUCKET [-y]",
	Short: "delete an empty bucket",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := append(globalOptions(), ops.AssumeYes(deleteYes))
		if err := ops.DeleteBucket(context.Context(), args[0], opts...); err != nil {
			if err == ops.ErrAborted {
				log.Info().Str("bucket", args[0]).Msg("not deleting bucket")
				return
			}
			log.Fatal().Err(err).Str("bucket", args[0]).Msg("failed to delete bucket")
		}
	},
}

func init() {
	bucketCmd.AddCommand(bucketDeleteCmd)

	bucketDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", deleteYes, "skip the confirmation prompt")
}
