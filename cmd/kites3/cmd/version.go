package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Injected at build time with -ldflags "-X github.com/assetnote/kites3/cmd/kites3/cmd.Version=..."
var (
	Version = "v0.0.0"
	Commit  = "commit"
	Date    = "today"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version, commit and build date of this binary",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kites3 %s (%s) built %s with %s %s/%s\n",
			Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
