package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/riskdesk/internal/audit"
)

// varCmd represents the var command
var varCmd = &cobra.Command{
	Use:   "var",
	Short: "Value at Risk and stress test",
	Long: `Prints 1-day VaR and Expected Shortfall (historical, parametric,
Cornish-Fisher, Monte Carlo) at 95% and 99%, the positions' monthly VaR and
the stress scenarios.

Example:
  go run ./cmd/riskdesk var
  go run ./cmd/riskdesk var --snapshot account.json --output json`,
	RunE: runVaR,
}

func init() {
	rootCmd.AddCommand(varCmd)
}

func runVaR(cmd *cobra.Command, args []string) error {
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
			"var":            report.VaR,
			"monte_carlo":    report.MonteCarlo,
			"positions_risk": report.PositionsRisk,
			"stress_test":    report.Stress,
		})
	}

	PrintHeader("Value at Risk (1 day)")
	if !report.Connected {
		PrintWarning("Terminal not connected: no data.")
		return nil
	}
	if len(report.VaR) == 0 {
		PrintInfo("Not enough equity history for VaR")
	} else {
		widths := []int{18, 10, 10, 10}
		PrintTableHeader([]string{"Method", "Conf.", "VaR", "ES"}, widths)
		for _, v := range report.VaR {
			PrintTableRow([]string{
				v.Method,
				fmt.Sprintf("%.0f%%", v.Confidence*100),
				audit.FormatPercent(v.VaR, 2, false),
				audit.FormatPercent(v.ES, 2, false),
			}, widths)
		}
	}

	fmt.Println()
	PrintKeyValue("Positions volatility", audit.FormatPercent(report.PositionsRisk.VolatilityPct, 2, false), 22)
	PrintKeyValue("Monthly VaR (95%)", audit.FormatPercent(report.PositionsRisk.MonthlyVaRPct, 2, false), 22)

	if mc := report.MonteCarlo; mc != nil {
		PrintKeyValue("Monte Carlo runs", fmt.Sprintf("%d (seed %d)", mc.Config.NumSimulations, mc.Config.Seed), 22)
	}

	if len(report.Stress) > 0 {
		fmt.Println()
		for _, s := range sortedKeys(report.Stress) {
			PrintKeyValue(s, audit.FormatPercent(report.Stress[s], 2, true)+" of equity", 22)
		}
	}
	return nil
}
