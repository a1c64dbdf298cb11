package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/msto63/calcscript/foundation/script"
	mdwast "github.com/msto63/calcscript/foundation/script/ast"
	"github.com/msto63/calcscript/internal/history/store"
	runnerServer "github.com/msto63/calcscript/internal/runner/server"
	coreGrpc "github.com/msto63/calcscript/pkg/core/grpc"
	"github.com/spf13/cobra"
)

var (
	runRemote    string
	runAST       bool
	runNoHistory bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a program",
	Long: `Run a program from a file, or from stdin when no file (or "-") is given.

The output goes to stdout. A fault prints "Error: line N: ..." to stderr
and exits with status 1; no output of the faulting run is printed.

Examples:
  calcscript run prog.calc
  echo 'print(6 * 7)' | calcscript run
  calcscript run --remote localhost:9300 prog.calc
  calcscript run --ast prog.calc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runRemote, "remote", "", "address of a runner service (gRPC)")
	runCmd.Flags().BoolVar(&runAST, "ast", false, "print the parsed statements instead of running")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run")
}

func runRun(cmd *cobra.Command, args []string) error {
	code, err := readProgram(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, "calcscript-run", true)
	if err != nil {
		return err
	}
	defer closer.Close()

	if runRemote != "" {
		if runAST {
			return fmt.Errorf("--ast cannot be combined with --remote")
		}
		return runRemoteProgram(cmd, code)
	}

	svc, err := newService(cfg, logger, !runNoHistory && !runAST)
	if err != nil {
		return err
	}
	defer svc.Close()

	if runAST {
		lines, err := svc.Parse(code)
		if err != nil {
			return fault(err)
		}
		out := cmd.OutOrStdout()
		for _, line := range lines {
			for _, stmt := range line.Statements {
				fmt.Fprintf(out, "line %d: %s\n", line.Number, stmt)
				fmt.Fprint(out, mdwast.TreeString(stmt))
			}
		}
		return nil
	}

	res, err := svc.Run(context.Background(), store.SourceCLI, code)
	if err != nil {
		return fault(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Output)
	return nil
}

func runRemoteProgram(cmd *cobra.Command, code string) error {
	client, err := runnerServer.Dial(coreGrpc.DefaultClientConfig(runRemote))
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Run(context.Background(), code)
	if err != nil {
		return err
	}
	if !reply.Success {
		fmt.Fprintf(os.Stderr, "Error: %s\n", reply.Message)
		return reportedError{fmt.Errorf("%s", reply.Message)}
	}
	fmt.Fprint(cmd.OutOrStdout(), reply.Output)
	return nil
}

// fault prints a program fault and marks it reported
func fault(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %s\n", script.Describe(err))
	return reportedError{err}
}
