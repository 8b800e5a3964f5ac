package cmd

import (
	"github.com/assetnote/kites3/internal/ops"
	"github.com/assetnote/kites3/pkg/context"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/assetnote/kites3/pkg/s3"
	"github.com/spf13/cobra"
)

var (
	listOptions = s3.ListOptions{}
	listAll     = false
)

var bucketListCmd = &cobra.Command{
	Use:     "list BUCKET [--prefix a/] [--delimiter /]",
	Aliases: []string{"ls"},
	Short:   "list the keys in a bucket",
	Long: `list the keys in a bucket. only the first page is fetched unless --all is set,
in which case pages are requested until the listing is no longer truncated`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := ops.ListBucket(context.Context(), args[0], listOptions, listAll, globalOptions()...); err != nil {
			log.Fatal().Err(err).Str("bucket", args[0]).Msg("failed to list bucket")
		}
	},
}

func init() {
	bucketCmd.AddCommand(bucketListCmd)

	bucketListCmd.Flags().StringVar(&listOptions.Prefix, "prefix", "", "only list keys starting with the prefix")
	bucketListCmd.Flags().StringVar(&listOptions.Marker, "marker", "", "list keys after the marker")
	bucketListCmd.Flags().StringVar(&listOptions.Delimiter, "delimiter", "", "group keys sharing a prefix up to the delimiter")
	bucketListCmd.Flags().IntVar(&listOptions.MaxKeys, "max-keys", 0, "page size. 0 uses the server default")
	bucketListCmd.Flags().BoolVarP(&listAll, "all", "a", listAll, "fetch every page")
}
