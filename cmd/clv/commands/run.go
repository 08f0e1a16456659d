package commands

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wonny/clv/internal/brain"
	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/internal/report"
	"github.com/wonny/clv/internal/s3_model"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "파이프라인 1회 실행 후 리포트 출력",
	Long: `거래 로그를 읽어 BG/NBD, Gamma-Gamma 모델을 적합하고 CLV 리포트를 출력합니다.

리포트 (stdout):
  - Sample Data
  - Frequency/Recency Matrix
  - Probability of Being Alive Matrix
  - Model Fit Assessment
  - Top N Customers by CLV

진행 상황과 로그는 stderr 로 출력됩니다.

Example:
  go run ./cmd/clv run
  go run ./cmd/clv run --format yaml --top 20 --grid-step 5`,
	RunE: runPipeline,
}

var (
	runFormat   string
	runTop      int
	runGridStep int
	runQuiet    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runFormat, "format", "text", "output format (text|json|yaml)")
	runCmd.Flags().IntVar(&runTop, "top", contracts.TopCustomers, "number of top customers")
	runCmd.Flags().IntVar(&runGridStep, "grid-step", s3_model.DefaultGridStep, "matrix sampling step (frequency, recency days)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "no progress bar")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(runFormat)
	if err != nil {
		return err
	}
	if runTop < 1 {
		return fmt.Errorf("--top must be >= 1")
	}

	ctx := cmd.Context()
	d, err := setup(ctx, runGridStep)
	if err != nil {
		return err
	}
	defer d.close()

	if !runQuiet {
		bar := progressbar.NewOptions(len(contracts.AllStages()),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("CLV pipeline"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		d.orchestrator.OnStage(func(r contracts.PipelineResult) {
			bar.Describe(r.Stage.Description())
			if r.Success {
				_ = bar.Add(1)
			}
		})
		defer func() { _ = bar.Finish() }()
	}

	config := brain.DefaultRunConfig()
	config.TopN = runTop

	result, err := d.orchestrator.Run(ctx, config)
	if err != nil {
		return err
	}

	return report.Render(os.Stdout, report.New(result, d.loader.SourceName()), format)
}
