package cmd

import (
	"os"

	"github.com/assetnote/kites3/internal/ops"
	"github.com/assetnote/kites3/pkg/context"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode KEY [KEY...]",
	Short: "print the url path encoding of object keys",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		keys, err := readKeys(args, os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read keys")
		}
		if err := ops.EncodeKeys(context.Context(), keys, globalOptions()...); err != nil {
			log.Fatal().Err(err).Msg("failed to encode keys")
		}
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
