package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskdesk/internal/broker"
	"github.com/wonny/riskdesk/pkg/config"
	"github.com/wonny/riskdesk/pkg/logger"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [file]",
	Short: "Capture a snapshot from the terminal bridge",
	Long: `Reads account, positions, deals and recent closes from the terminal
bridge and writes them to a snapshot file for offline analysis.
The format follows the extension (.json, otherwise YAML).

Example:
  go run ./cmd/riskdesk snapshot account.yaml
  go run ./cmd/riskdesk analyze --snapshot account.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	snap, err := broker.NewBridgeClient(cfg.Broker, log).Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	if err := broker.SaveSnapshot(args[0], snap); err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	PrintSuccess(fmt.Sprintf("Snapshot written to %s (%d positions, %d deals, %d equity points)",
		args[0], len(snap.Positions), len(snap.Deals), len(snap.Equity)))
	return nil
}
