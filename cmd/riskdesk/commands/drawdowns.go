package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/riskdesk/internal/audit"
)

// drawdownsCmd represents the drawdowns command
var drawdownsCmd = &cobra.Command{
	Use:   "drawdowns",
	Short: "Drawdown episodes and indices",
	Long: `Identifies drawdown episodes in the equity curve and prints their depth,
duration and recovery together with the Ulcer and Pain indices.

Example:
  go run ./cmd/riskdesk drawdowns
  go run ./cmd/riskdesk drawdowns --snapshot account.yaml --output json`,
	RunE: runDrawdowns,
}

func init() {
	rootCmd.AddCommand(drawdownsCmd)
}

func runDrawdowns(cmd *cobra.Command, args []string) error {
	asJSON, err := jsonOutput()
	if err != nil {
		return err
	}

	report, err := runReport(cmd.Context())
	if err != nil {
		return err
	}
	d := report.Drawdown

	if asJSON {
		return printJSON(d)
	}

	PrintHeader("Drawdowns")
	if !report.Connected {
		PrintWarning("Terminal not connected: no data.")
		return nil
	}

	PrintKeyValue("Current", audit.FormatPercent(d.Current, 2, false), 12)
	PrintKeyValue("Maximum", audit.FormatPercent(d.Max.DrawdownPct, 2, false), 12)
	PrintKeyValue("Ulcer index", fmt.Sprintf("%.2f", d.UlcerIndex), 12)
	PrintKeyValue("Pain index", fmt.Sprintf("%.2f", d.PainIndex), 12)
	fmt.Println()

	if len(d.Episodes) == 0 {
		PrintInfo("No drawdown episodes beyond the threshold")
		return nil
	}

	widths := []int{10, 10, 10, 9, 6, 6, 8}
	PrintTableHeader([]string{"Peak", "Trough", "Recovery", "Depth", "Down", "Up", "Status"}, widths)
	for _, e := range d.Episodes {
		recovery, status := "-", "active"
		if e.RecoveryDate != nil {
			recovery, status = e.RecoveryDate.Format("2006-01-02"), "closed"
		}
		PrintTableRow([]string{
			e.PeakDate.Format("2006-01-02"),
			e.TroughDate.Format("2006-01-02"),
			recovery,
			audit.FormatPercent(e.MaxDrawdownPct, 2, false),
			fmt.Sprintf("%dd", e.DrawdownDays),
			fmt.Sprintf("%dd", e.RecoveryDays),
			status,
		}, widths)
	}

	if len(d.ChangePoints) > 0 {
		fmt.Println()
		items := make([]string, 0, len(d.ChangePoints))
		for _, cp := range d.ChangePoints {
			items = append(items, fmt.Sprintf("%s (%+.4f)", cp.Date.Format("2006-01-02"), cp.Difference))
		}
		PrintInfo("Return regime changes:")
		PrintList(items)
	}
	return nil
}
