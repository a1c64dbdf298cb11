package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/msto63/calcscript/internal/tui/console"
	"github.com/msto63/calcscript/pkg/core/version"
	"github.com/spf13/cobra"
)

var consoleNoHistory bool

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive console",
	Long: `Start the interactive calcscript console.

The editor holds a whole program. Each run starts a fresh session.

Keys:
  Ctrl+R      run the program
  Ctrl+T      show the parse tree
  Ctrl+P/N    recall earlier programs
  Ctrl+L      clear the transcript
  PgUp/PgDn   scroll
  Ctrl+C      quit`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().BoolVar(&consoleNoHistory, "no-history", false, "do not record runs")
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the TUI owns the terminal; only warnings reach the log
	logger, closer, err := newLogger(cfg, "calcscript-console", true)
	if err != nil {
		return err
	}
	defer closer.Close()

	svc, err := newService(cfg, logger, !consoleNoHistory)
	if err != nil {
		return err
	}
	defer svc.Close()

	model := console.New(console.Config{
		Runner:  svc,
		Timeout: cfg.HTTP.RunTimeout.Duration,
		Version: version.Console,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}
