package cmd

import (
	"fmt"

	"github.com/msto63/calcscript/pkg/core/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.Get())
		for _, name := range []string{"engine", "runner", "playground", "console", "history"} {
			fmt.Fprintf(out, "  %-11s %s\n", name+":", version.ServiceVersion(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
