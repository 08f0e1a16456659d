package main

import (
	"os"

	"github.com/wonny/clv/cmd/clv/commands"
)

// main is the entry point for the CLV CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/clv [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
