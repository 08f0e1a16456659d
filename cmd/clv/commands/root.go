package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dataPath   string
	sourceKind string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clv",
	Short: "Customer Lifetime Value calculator",
	Long: `CLV Unified CLI

거래 로그로부터 고객 생애 가치(CLV)를 계산합니다.
5단계 파이프라인: Load → Prepare → Summary → Model → Rank

Usage:
  go run ./cmd/clv [command]

Examples:
  go run ./cmd/clv run
  go run ./cmd/clv run --format json --top 20
  go run ./cmd/clv summary --data OnlineRetail.csv
  go run ./cmd/clv serve --port 8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		PrintError(err.Error())
		return err
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "CSV transaction log (overrides CLV_DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&sourceKind, "source", "", "source kind csv|postgres|mysql (overrides CLV_SOURCE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
