package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/guimove/fairprice/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		return writeVersion(cmd.OutOrStdout(), short)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}

// writeVersion prints build metadata. Short output is the bare version, for
// scripts comparing releases.
func writeVersion(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, version.Version)
		return err
	}
	_, err := fmt.Fprintf(w, "fairprice %s\n  commit:  %s\n  built:   %s\n  go:      %s %s/%s\n",
		version.Version, version.Commit, version.BuildDate,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
