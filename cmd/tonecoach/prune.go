package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/tonecoach/pkg/cli"
	"mercator-hq/tonecoach/pkg/usage/ledger"
)

var pruneFlags struct {
	days int
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete usage records past the retention period",
	Long: `Delete usage ledger records older than usage.retention.days once.

"tonecoach run" prunes on usage.retention.schedule; this command is for
one-off cleanup or for setups that do not keep the server running.

Examples:
  # Apply the configured retention
  tonecoach prune

  # Keep only the last week
  tonecoach prune --days 7`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneFlags.days, "days", 0, "override usage.retention.days")
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneFlags.days < 0 {
		return cli.NewConfigError("days", "must not be negative")
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	retention := cfg.Usage.Retention
	if pruneFlags.days > 0 {
		retention.Days = pruneFlags.days
	}

	store, err := openLedger(cfg)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}
	defer store.Close()

	pruner := ledger.NewPruner(store, retention)
	out := cmd.OutOrStdout()
	if !pruner.Enabled() {
		fmt.Fprintln(out, "Retention is disabled; nothing pruned.")
		return nil
	}

	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	fmt.Fprintf(out, "✓ Deleted %d usage records older than %s\n", deleted, pruner.Cutoff().UTC().Format("2006-01-02"))
	return nil
}
