package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format output format of a rendered report
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (text|json|yaml)", s)
	}
}

// Render writes the report in the given format
func Render(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		return renderText(w, r)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// ═══════════════════════════════════════════════════════════
// Text rendering
// ═══════════════════════════════════════════════════════════

const (
	doubleSeparator = "═══════════════════════════════════════════════════════════"
	separator       = "───────────────────────────────────────────────────────────"
)

// textWriter remembers the first write error
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) subheader(title string) {
	t.printf("\n%s\n%s\n", title, separator)
}

func renderText(w io.Writer, r *Report) error {
	t := &textWriter{w: w}

	t.printf("%s\n  %s\n%s\n", doubleSeparator, r.Title, doubleSeparator)
	t.printf("%s\n", r.Introduction)
	t.printf("  Run ID          : %s\n", r.RunID)
	if r.Source != "" {
		t.printf("  Source          : %s\n", r.Source)
	}
	t.printf("  Observation end : %s\n", r.ObservationEnd)
	t.printf("  Customers       : %d\n", r.Customers)

	t.subheader("Sample Data:")
	t.table(func(tw io.Writer) {
		fmt.Fprintln(tw, "InvoiceNo\tStockCode\tDescription\tQuantity\tInvoiceDate\tUnitPrice\tCustomerID\tCountry")
		for _, row := range r.Sample {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				row.InvoiceNo, row.StockCode, row.Description, row.Quantity,
				row.InvoiceDate, row.UnitPrice, row.CustomerID, row.Country)
		}
	})

	if r.FrequencyRecency != nil {
		t.subheader("Frequency/Recency Matrix:")
		t.matrix(r.FrequencyRecency.Title, r.FrequencyRecency.Frequencies, r.FrequencyRecency.Recencies, r.FrequencyRecency.Values, "%.3f")
	}
	if r.ProbabilityAlive != nil {
		t.subheader("Probability of Being Alive Matrix:")
		t.matrix(r.ProbabilityAlive.Title, r.ProbabilityAlive.Frequencies, r.ProbabilityAlive.Recencies, r.ProbabilityAlive.Values, "%.2f")
	}
	if pt := r.PeriodTransactions; pt != nil {
		t.subheader("Model Fit Assessment:")
		t.printf("Frequency of Repeat Transactions\n")
		t.table(func(tw io.Writer) {
			fmt.Fprintln(tw, "Repeat\tActual\tModel")
			for i := range pt.Counts {
				fmt.Fprintf(tw, "%d\t%d\t%.1f\n", pt.Counts[i], pt.Actual[i], pt.Expected[i])
			}
		})
	}

	t.subheader("Top 10 Customers by CLV:")
	t.table(func(tw io.Writer) {
		fmt.Fprintln(tw, "Rank\tCustomerID\tfrequency\trecency\tT\tmonetary_value\tpred_num_txn\tpred_txn_value\tCLV")
		for _, c := range r.TopCustomers {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%.0f\t%.0f\t%.2f\t%.2f\t%.2f\t%.2f\n",
				c.Rank, c.CustomerID, c.Frequency, c.Recency, c.T,
				c.MonetaryValue, c.PredictedPurchases, c.PredictedAvgValue, c.CLV)
		}
	})

	if p := r.Parameters; p != nil && p.BetaGeo != nil && p.GammaGamma != nil {
		t.subheader("Model Parameters:")
		t.printf("  BG/NBD      : r=%.4f alpha=%.4f a=%.4f b=%.4f\n", p.BetaGeo.R, p.BetaGeo.Alpha, p.BetaGeo.A, p.BetaGeo.B)
		t.printf("  Gamma-Gamma : p=%.4f q=%.4f v=%.4f (%d repeat customers)\n", p.GammaGamma.P, p.GammaGamma.Q, p.GammaGamma.V, p.GammaGamma.Customers)
	}

	if len(r.Stages) > 0 {
		t.subheader("Stages:")
		t.table(func(tw io.Writer) {
			fmt.Fprintln(tw, "Stage\tIn\tOut\tms")
			for _, s := range r.Stages {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Stage.ShortName(), s.InputCount, s.OutputCount, s.Duration)
			}
		})
	}

	return t.err
}

// table renders tab-separated rows aligned
func (t *textWriter) table(fill func(tw io.Writer)) {
	if t.err != nil {
		return
	}
	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fill(tw)
	t.err = tw.Flush()
}

// matrix rows = frequency, columns = recency
func (t *textWriter) matrix(title string, freqs []int, recs []float64, values [][]float64, cell string) {
	t.printf("%s\n(rows: frequency, columns: recency in days)\n", title)
	t.table(func(tw io.Writer) {
		fmt.Fprint(tw, "f\\r")
		for _, r := range recs {
			fmt.Fprintf(tw, "\t%.0f", r)
		}
		fmt.Fprintln(tw, "\t")
		for i, f := range freqs {
			fmt.Fprintf(tw, "%d", f)
			for _, v := range values[i] {
				fmt.Fprintf(tw, "\t"+cell, v)
			}
			fmt.Fprintln(tw, "\t")
		}
	})
}
