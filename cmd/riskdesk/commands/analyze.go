package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full risk report once",
	Long: `Reads one snapshot and prints the complete risk report.

이 명령어는:
- 계좌/포지션/거래 내역 로드
- 성과 지표, VaR, 드로다운, 리스크 점수 계산
- 알림 임계값 점검

Example:
  go run ./cmd/riskdesk analyze
  go run ./cmd/riskdesk analyze --snapshot account.yaml --output json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	asJSON, err := jsonOutput()
	if err != nil {
		return err
	}

	report, err := runReport(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		data, err := report.ToJSON()
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(report.ToSummary())
	return nil
}
