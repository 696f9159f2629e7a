package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/relloyd/sparkify-dwh/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the sdw version and where its config lives",
	RunE: func(cmd *cobra.Command, args []string) error {
		printVersion(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, `sdw
  Version:	%v
  Build date:	%v
  OS/Arch:	%v
  Go version:	%v
  Config dir:	%v
`, version, buildDate, osArch, runtime.Version(), config.Main.Dirname)
}
