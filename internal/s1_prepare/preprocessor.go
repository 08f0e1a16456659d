package s1_prepare

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

// Stats counts what S1 kept and dropped
type Stats struct {
	Input              int `json:"input" yaml:"input"`
	DroppedNoCustomer  int `json:"dropped_no_customer" yaml:"dropped_no_customer"`
	DroppedNonPositive int `json:"dropped_non_positive_quantity" yaml:"dropped_non_positive_quantity"`
	Output             int `json:"output" yaml:"output"`
}

// Preprocessor implements S1: transaction cleaning
// ⭐ SSOT: S1 정제 규칙은 여기서만
type Preprocessor struct {
	logger *logger.Logger
}

// NewPreprocessor creates a new preprocessor
func NewPreprocessor(log *logger.Logger) *Preprocessor {
	return &Preprocessor{logger: log.Component("s1_prepare")}
}

// Prepare cleans raw rows
func (p *Preprocessor) Prepare(ctx context.Context, raw []contracts.RawTransaction) ([]contracts.Transaction, error) {
	txs, _, err := p.PrepareWithStats(ctx, raw)
	return txs, err
}

// PrepareWithStats cleans raw rows and reports counts.
// 순서: 날짜 파싱(전체 행) → 고객ID 없는 행 제거 → 수량 <= 0 제거 → 거래 금액 계산
func (p *Preprocessor) PrepareWithStats(ctx context.Context, raw []contracts.RawTransaction) ([]contracts.Transaction, Stats, error) {
	stats := Stats{Input: len(raw)}

	// 1. every row's date must parse, including rows dropped below
	dates := make([]time.Time, len(raw))
	for i, r := range raw {
		d, err := ParseInvoiceDate(r.InvoiceDate)
		if err != nil {
			return nil, stats, &contracts.ParseError{Line: r.Line, Field: contracts.ColumnInvoiceDate, Value: r.InvoiceDate, Err: err}
		}
		dates[i] = d
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	out := make([]contracts.Transaction, 0, len(raw))
	for i, r := range raw {
		// 2. anonymous
		customerID := NormalizeCustomerID(r.CustomerID)
		if customerID == "" {
			stats.DroppedNoCustomer++
			continue
		}

		// 3. returns / cancellations
		qty, err := strconv.Atoi(strings.TrimSpace(r.Quantity))
		if err != nil {
			return nil, stats, &contracts.ParseError{Line: r.Line, Field: contracts.ColumnQuantity, Value: r.Quantity, Err: err}
		}
		if qty <= 0 {
			stats.DroppedNonPositive++
			continue
		}

		// 4. total value
		price, err := strconv.ParseFloat(strings.TrimSpace(r.UnitPrice), 64)
		if err != nil {
			return nil, stats, &contracts.ParseError{Line: r.Line, Field: contracts.ColumnUnitPrice, Value: r.UnitPrice, Err: err}
		}

		out = append(out, contracts.Transaction{
			CustomerID:  customerID,
			InvoiceDate: dates[i],
			Quantity:    qty,
			UnitPrice:   price,
			TotalValue:  float64(qty) * price,
		})
	}
	stats.Output = len(out)

	p.logger.WithFields(map[string]interface{}{
		"input":                stats.Input,
		"dropped_no_customer":  stats.DroppedNoCustomer,
		"dropped_non_positive": stats.DroppedNonPositive,
		"output":               stats.Output,
	}).Info("transactions cleaned")

	return out, stats, nil
}

// ParseInvoiceDate parses contracts.InvoiceDateLayout and drops the time of day
func ParseInvoiceDate(s string) (time.Time, error) {
	t, err := time.Parse(contracts.InvoiceDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// NormalizeCustomerID trims the id and drops a spreadsheet float suffix ("17850.0" → "17850")
func NormalizeCustomerID(id string) string {
	id = strings.TrimSpace(id)
	if head, ok := strings.CutSuffix(id, ".0"); ok && head != "" && isDigits(head) {
		return head
	}
	return id
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
