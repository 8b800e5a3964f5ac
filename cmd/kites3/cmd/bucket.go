package cmd

import (
	"github.com/spf13/cobra"
)

var bucketCmd = &cobra.Command{
	Use:     "bucket",
	Aliases: []string{"b"},
	Short:   "test, create, delete and list buckets",
}

func init() {
	rootCmd.AddCommand(bucketCmd)
}
