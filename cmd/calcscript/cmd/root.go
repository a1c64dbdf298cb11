package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "calcscript",
	Short: "calcscript - arithmetic scripting playground",
	Long: `calcscript runs small programs of integer arithmetic, variable
assignment and print statements.

Every run is a fresh session: variables never carry over, and a fault
discards the output of the whole run.

Surfaces:
  run      - run a file or stdin, locally or on a remote runner
  serve    - playground gateway (HTTP :5000) and runner (gRPC :9300)
  console  - interactive terminal editor
  history  - stored submissions`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !isReported(err) {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// reportedError marks an error already printed to the user
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	_, ok := err.(reportedError)
	return ok
}
