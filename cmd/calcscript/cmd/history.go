package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/msto63/calcscript/internal/history/store"
	"github.com/spf13/cobra"
)

var (
	historyLimit    int
	historySource   string
	historyFailures bool
	historyStats    bool
	historyPrune    time.Duration
	historyJSON     bool
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List stored submissions",
	Long: `List the programs recorded in the history store, newest first.
With an id, show one submission in full.

Examples:
  calcscript history
  calcscript history --failures --limit 5
  calcscript history --source http
  calcscript history --stats
  calcscript history --prune 720h`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of submissions")
	historyCmd.Flags().StringVar(&historySource, "source", "", "only this source (http, websocket, grpc, cli, console)")
	historyCmd.Flags().BoolVar(&historyFailures, "failures", false, "only failed runs")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "show aggregate statistics")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete submissions older than this duration")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	hist, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if hist == nil {
		return fmt.Errorf("history is disabled")
	}
	defer hist.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case historyPrune > 0:
		n, err := hist.Prune(ctx, historyPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d submissions\n", n)
		return nil

	case historyStats:
		stats, err := hist.Stats(ctx)
		if err != nil {
			return err
		}
		if historyJSON {
			return printJSON(cmd, stats)
		}
		fmt.Fprintf(out, "Total:    %d\n", stats.Total)
		fmt.Fprintf(out, "Failures: %d\n", stats.Failures)
		if !stats.LastRunAt.IsZero() {
			fmt.Fprintf(out, "Last run: %s\n", stats.LastRunAt.Local().Format("2006-01-02 15:04:05"))
		}
		printCounts(cmd, "By source", stats.BySource)
		printCounts(cmd, "By fault", stats.ByCode)
		return nil

	case len(args) == 1:
		sub, err := hist.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if historyJSON {
			return printJSON(cmd, sub)
		}
		fmt.Fprintf(out, "ID:       %s\n", sub.ID)
		fmt.Fprintf(out, "Time:     %s\n", sub.Timestamp.Local().Format(time.RFC3339))
		fmt.Fprintf(out, "Source:   %s\n", sub.Source)
		fmt.Fprintf(out, "Duration: %s\n", sub.Duration)
		fmt.Fprintf(out, "\n%s\n\n", sub.Code)
		if sub.Success {
			fmt.Fprint(out, sub.Output)
		} else {
			fmt.Fprintf(out, "Error: %s\n", sub.ErrorMessage)
		}
		return nil
	}

	subs, err := hist.Recent(ctx, store.Filter{
		Source:       store.Source(historySource),
		FailuresOnly: historyFailures,
		Limit:        historyLimit,
	})
	if err != nil {
		return err
	}
	if historyJSON {
		return printJSON(cmd, subs)
	}
	if len(subs) == 0 {
		fmt.Fprintln(out, "No submissions")
		return nil
	}
	for _, sub := range subs {
		fmt.Fprintf(out, "%s  %s\n", sub.ID, sub)
	}
	return nil
}

func printCounts(cmd *cobra.Command, title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %d\n", k, counts[k])
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
