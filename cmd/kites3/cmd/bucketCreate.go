package cmd

import (
	"github.com/assetnote/kites3/internal/ops"
	"github.com/assetnote/kites3/pkg/context"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/spf13/cobra"
)

var (
	createACL      = ""
	createLocation = ""
)

var bucketCreateCmd = &cobra.Command{
	Use:   "create BUCKET [--acl private] [--location eu-west-1]",
	Short: "create a bucket",
	Long: `create a bucket with an optional canned acl and location constraint.
the acl can be one of private, public-read, public-read-write, authenticated-read,
bucket-owner-read, bucket-owner-full-control`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := ops.CreateBucket(context.Context(), args[0], createACL, createLocation, globalOptions()...); err != nil {
			log.Fatal().Err(err).Str("bucket", args[0]).Msg("failed to create bucket")
		}
	},
}

func init() {
	bucketCmd.AddCommand(bucketCreateCmd)

	bucketCreateCmd.Flags().StringVar(&createACL, "acl", createACL, "canned acl applied to the bucket")
	bucketCreateCmd.Flags().StringVar(&createLocation, "location", createLocation, "location constraint for the bucket")
}
