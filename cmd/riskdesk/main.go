package main

import (
	"os"

	"github.com/wonny/riskdesk/cmd/riskdesk/commands"
)

// main is the entry point for the riskdesk CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/riskdesk [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
