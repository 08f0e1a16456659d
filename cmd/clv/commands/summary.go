package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/clv/internal/brain"
	"github.com/wonny/clv/internal/s3_model"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "고객별 요약 출력 (S0 ~ S2, 모델 적합 없음)",
	Long: `거래 로그를 고객별 frequency / recency / T / monetary_value 로 요약합니다.

Example:
  go run ./cmd/clv summary
  go run ./cmd/clv summary --limit 50`,
	RunE: runSummary,
}

var summaryLimit int

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().IntVar(&summaryLimit, "limit", 20, "customers to print (0 = all)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := setup(ctx, s3_model.DefaultGridStep)
	if err != nil {
		return err
	}
	defer d.close()

	result, err := d.orchestrator.Summarize(ctx, brain.DefaultRunConfig())
	if err != nil {
		return err
	}

	repeat := 0
	for _, s := range result.Summaries {
		if s.IsRepeat() {
			repeat++
		}
	}

	PrintHeader("Customer Summary", d.loader.SourceName())
	PrintKeyValue("Run ID", result.RunID, 20)
	PrintKeyValue("Observation end", result.ObservationEnd.Format("2006-01-02"), 20)
	PrintKeyValue("Rows dropped (anon)", fmt.Sprintf("%d", result.PrepareStats.DroppedNoCustomer), 20)
	PrintKeyValue("Rows dropped (qty<=0)", fmt.Sprintf("%d", result.PrepareStats.DroppedNonPositive), 20)
	PrintKeyValue("Customers", fmt.Sprintf("%d", len(result.Summaries)), 20)
	PrintKeyValue("Repeat customers", fmt.Sprintf("%d", repeat), 20)
	PrintSeparator()

	// 캐시된 원본에서 읽으므로 재로딩 없음
	sample, err := d.loader.Sample(ctx, brain.DefaultSampleSize)
	if err != nil {
		return err
	}
	fmt.Println("Sample Data:")
	sampleWidths := []int{10, 12, 18, 10, 10}
	PrintTableHeader([]string{"InvoiceNo", "CustomerID", "InvoiceDate", "Quantity", "UnitPrice"}, sampleWidths)
	for _, row := range sample {
		PrintTableRow([]string{row.InvoiceNo, row.CustomerID, row.InvoiceDate, row.Quantity, row.UnitPrice}, sampleWidths)
	}
	fmt.Println()

	widths := []int{12, 10, 8, 6, 15}
	PrintTableHeader([]string{"CustomerID", "frequency", "recency", "T", "monetary_value"}, widths)
	for i, s := range result.Summaries {
		if summaryLimit > 0 && i >= summaryLimit {
			fmt.Printf("   ... %d more\n", len(result.Summaries)-summaryLimit)
			break
		}
		PrintTableRow([]string{
			s.CustomerID,
			fmt.Sprintf("%d", s.Frequency),
			fmt.Sprintf("%.0f", s.Recency),
			fmt.Sprintf("%.0f", s.T),
			fmt.Sprintf("%.2f", s.MonetaryValue),
		}, widths)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Summary completed in %.2fs", result.Duration.Seconds()))
	return nil
}
