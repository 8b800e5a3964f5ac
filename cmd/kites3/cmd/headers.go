package cmd

import (
	"time"

	"github.com/assetnote/kites3/internal/ops"
	"github.com/assetnote/kites3/pkg/context"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/spf13/cobra"
)

var (
	headersACL  = ""
	headersMeta = []string{}
)

var headersCmd = &cobra.Command{
	Use:   "headers [--acl public-read] [-m x-amz-meta-owner:alice]",
	Short: "print the canonical headers a request would carry",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := ops.CanonicalHeaders(context.Context(), headersACL, headersMeta, time.Time{}, globalOptions()...); err != nil {
			log.Fatal().Err(err).Msg("failed to compose headers")
		}
	},
}

func init() {
	rootCmd.AddCommand(headersCmd)

	headersCmd.Flags().StringVar(&headersACL, "acl", headersACL, "canned acl header")
	headersCmd.Flags().StringSliceVarP(&headersMeta, "meta", "m", headersMeta, "x-amz-meta- headers as name:value")
}
