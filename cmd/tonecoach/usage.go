package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/tonecoach/pkg/cli"
	"mercator-hq/tonecoach/pkg/usage"
)

var usageFlags struct {
	since  time.Duration
	recent int
	output string
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize recorded model usage and cost",
	Long: `Summarize the usage ledger per model.

Requires usage.ledger.enabled. Costs are computed at request time from the
pricing table, so later price changes do not rewrite history.

Examples:
  # Totals for the last 30 days
  tonecoach usage

  # Last week as CSV
  tonecoach usage --since 168h --output csv

  # The 20 most recent requests
  tonecoach usage --recent 20`,
	RunE: runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().DurationVar(&usageFlags.since, "since", 30*24*time.Hour, "summarize records newer than this")
	usageCmd.Flags().IntVar(&usageFlags.recent, "recent", 0, "list the N most recent records instead of totals")
	usageCmd.Flags().StringVarP(&usageFlags.output, "output", "o", "text", "output format: text, json, csv")
}

// usageReader is the read side of the ledger.
type usageReader interface {
	Summarize(ctx context.Context, since time.Time) ([]usage.Summary, error)
	Recent(ctx context.Context, limit int) ([]usage.Record, error)
}

func runUsage(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(usageFlags.output)
	if err != nil {
		return err
	}
	if usageFlags.since <= 0 {
		return cli.NewConfigError("since", "must be a positive duration")
	}
	if usageFlags.recent < 0 {
		return cli.NewConfigError("recent", "must not be negative")
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openLedger(cfg)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}
	defer store.Close()

	if err := reportUsage(cmd.Context(), store, time.Now().Add(-usageFlags.since), usageFlags.recent, format, cmd.OutOrStdout()); err != nil {
		return cli.NewCommandError("usage", err)
	}
	return nil
}

func reportUsage(ctx context.Context, store usageReader, since time.Time, recent int, format cli.OutputFormat, w io.Writer) error {
	formatter := cli.NewFormatter(format)

	if recent > 0 {
		records, err := store.Recent(ctx, recent)
		if err != nil {
			return err
		}
		if records == nil {
			records = []usage.Record{}
		}
		return formatter.FormatTo(w, recordTable(records))
	}

	summaries, err := store.Summarize(ctx, since)
	if err != nil {
		return err
	}
	if len(summaries) == 0 && format == cli.FormatText {
		_, err := fmt.Fprintf(w, "No usage recorded since %s.\n", since.UTC().Format(time.RFC3339))
		return err
	}
	if summaries == nil {
		summaries = []usage.Summary{}
	}
	return formatter.FormatTo(w, summaryTable(summaries))
}
