package cmd

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var objectCmd = &cobra.Command{
	Use:     "object",
	Aliases: []string{"o"},
	Short:   "inspect objects",
}

func init() {
	rootCmd.AddCommand(objectCmd)
}

// readKeys returns the keys in args, reading newline separated keys from r in place of a "-" argument
func readKeys(args []string, r io.Reader) ([]string, error) {
	ret := make([]string, 0, len(args))
	for _, a := range args {
		if a != "-" {
			ret = append(ret, a)
			continue
		}
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
				ret = append(ret, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
