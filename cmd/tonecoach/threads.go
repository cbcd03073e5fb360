package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/tonecoach/pkg/cli"
	"mercator-hq/tonecoach/pkg/mail"
	"mercator-hq/tonecoach/pkg/mail/gmail"
)

var threadsFlags struct {
	query  string
	max    int64
	output string
}

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List mail threads",
	Long: `List threads matching a Gmail search query.

The thread ids printed here are the values the web UI sends as thread_id.

Examples:
  # Inbox threads (mail.default_query)
  tonecoach threads

  # Unread threads from one sender, as JSON
  tonecoach threads --query "is:unread from:dana@example.com" --output json`,
	RunE: runThreads,
}

func init() {
	rootCmd.AddCommand(threadsCmd)

	threadsCmd.Flags().StringVarP(&threadsFlags.query, "query", "q", "", "Gmail search query (default mail.default_query)")
	threadsCmd.Flags().Int64VarP(&threadsFlags.max, "max", "n", 0, "maximum number of threads (default mail.max_results)")
	threadsCmd.Flags().StringVarP(&threadsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func runThreads(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(threadsFlags.output)
	if err != nil {
		return err
	}
	if threadsFlags.max < 0 || threadsFlags.max > 500 {
		return cli.NewConfigError("max", "must be between 1 and 500")
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	query := threadsFlags.query
	if query == "" {
		query = cfg.Mail.DefaultQuery
	}
	max := threadsFlags.max
	if max == 0 {
		max = cfg.Mail.MaxResults
	}

	auth := gmail.NewAuthenticator(&cfg.Mail)
	client := gmail.NewClient(&cfg.Mail, auth.Service, logger)

	if err := listThreads(cmd.Context(), client, query, max, format, cmd.OutOrStdout()); err != nil {
		return cli.NewCommandError("threads", err)
	}
	return nil
}

func listThreads(ctx context.Context, gateway mail.Gateway, query string, max int64, format cli.OutputFormat, w io.Writer) error {
	threads, err := gateway.ListThreads(ctx, query, max)
	if err != nil {
		return err
	}
	if len(threads) == 0 && format == cli.FormatText {
		_, err := fmt.Fprintf(w, "No threads match %q.\n", query)
		return err
	}
	if threads == nil {
		threads = []mail.ThreadSummary{}
	}
	return cli.NewFormatter(format).FormatTo(w, threadTable(threads))
}
