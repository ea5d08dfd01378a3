package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Check the alert thresholds once",
	Long: `Evaluates the configured thresholds (margin, D-Leverage, monthly VaR,
daily loss, drawdown, correlation) against one snapshot and prints the alerts
and optimization suggestions.

Thresholds come from ALERT_* environment variables.

Example:
  go run ./cmd/riskdesk alerts
  go run ./cmd/riskdesk alerts --snapshot account.yaml`,
	RunE: runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(cmd *cobra.Command, args []string) error {
	asJSON, err := jsonOutput()
	if err != nil {
		return err
	}

	report, err := runReport(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(map[string]interface{}{
			"alerts":        report.Alerts,
			"optimizations": report.Optimizations,
			"risk_score":    report.RiskScore,
		})
	}

	PrintHeader("Alerts")
	if !report.Connected {
		PrintWarning("Terminal not connected: no data.")
		return nil
	}

	rs := report.RiskScore
	PrintKeyValue("Risk score", fmt.Sprintf("%d/100 (%s)", rs.Score, rs.Rating), 10)
	fmt.Println()

	if len(report.Alerts) == 0 {
		PrintSuccess("No thresholds breached")
		return nil
	}

	for _, a := range report.Alerts {
		fmt.Printf("🚨 [%s] %s: %s\n", a.Category, a.Message, a.Value)
	}
	fmt.Println()
	for _, o := range report.Optimizations {
		fmt.Printf("💡 %s\n", o.Title)
		fmt.Printf("   %s\n", o.Message)
	}
	return nil
}
