package s2_summary

import (
	"context"
	"slices"
	"time"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

const day = 24 * time.Hour

// Aggregator implements S2: one behavioural summary per customer
// ⭐ SSOT: frequency / recency / T / monetary 계산은 여기서만
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log.Component("s2_summary")}
}

// customerDays holds per-day spend of one customer
type customerDays struct {
	first time.Time
	spend map[time.Time]float64
}

// Summarize groups transactions by customer.
// 관측 종료일 이후 거래는 제외, 같은 날의 거래는 한 번의 구매로 합산.
func (a *Aggregator) Summarize(ctx context.Context, txs []contracts.Transaction, observationEnd time.Time) ([]contracts.CustomerSummary, error) {
	cutoff := truncateDay(observationEnd)

	byCustomer := make(map[string]*customerDays)
	skipped := 0
	for _, tx := range txs {
		d := truncateDay(tx.InvoiceDate)
		if d.After(cutoff) {
			skipped++
			continue
		}
		c, ok := byCustomer[tx.CustomerID]
		if !ok {
			c = &customerDays{first: d, spend: make(map[time.Time]float64)}
			byCustomer[tx.CustomerID] = c
		}
		if d.Before(c.first) {
			c.first = d
		}
		c.spend[d] += tx.TotalValue
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]contracts.CustomerSummary, 0, len(byCustomer))
	for id, c := range byCustomer {
		out = append(out, summarize(id, c, cutoff))
	}
	slices.SortFunc(out, func(x, y contracts.CustomerSummary) int {
		return contracts.CompareCustomerIDs(x.CustomerID, y.CustomerID)
	})

	repeat := 0
	for _, s := range out {
		if s.IsRepeat() {
			repeat++
		}
	}
	a.logger.WithFields(map[string]interface{}{
		"transactions":     len(txs),
		"after_cutoff":     skipped,
		"customers":        len(out),
		"repeat_customers": repeat,
		"observation_end":  cutoff.Format(time.DateOnly),
	}).Info("customer summary built")

	return out, nil
}

func summarize(id string, c *customerDays, cutoff time.Time) contracts.CustomerSummary {
	// sorted so the float sum is reproducible
	dates := make([]time.Time, 0, len(c.spend))
	for d := range c.spend {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, time.Time.Compare)

	var repeatSpend float64
	for _, d := range dates[1:] {
		repeatSpend += c.spend[d]
	}
	last := dates[len(dates)-1]

	s := contracts.CustomerSummary{
		CustomerID: id,
		Frequency:  len(dates) - 1,
		Recency:    days(last.Sub(c.first)),
		T:          days(cutoff.Sub(c.first)),
	}
	// single-day customers have no repeat spend: monetary value 0
	if s.Frequency > 0 {
		s.MonetaryValue = repeatSpend / float64(s.Frequency)
	}
	return s
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func days(d time.Duration) float64 {
	return float64(d / day)
}
