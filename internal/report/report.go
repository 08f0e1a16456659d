package report

import (
	"time"

	"github.com/wonny/clv/internal/brain"
	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/internal/s3_model"
	"github.com/wonny/clv/internal/selection"
)

const (
	Title        = "Customer Lifetime Value Calculator"
	Introduction = "This app calculates Customer Lifetime Value (CLV) using the BG/NBD and Gamma-Gamma models."
)

// Parameters fitted model parameters
type Parameters struct {
	BetaGeo    *s3_model.BetaGeo    `json:"bg_nbd" yaml:"bg_nbd"`
	GammaGamma *s3_model.GammaGamma `json:"gamma_gamma" yaml:"gamma_gamma"`
}

// Report is the display surface of one run, sections in display order
// ⭐ SSOT: 화면 표시 순서 = 필드 순서
type Report struct {
	Title              string                       `json:"title" yaml:"title"`
	Introduction       string                       `json:"introduction" yaml:"introduction"`
	Sample             []contracts.RawTransaction   `json:"sample" yaml:"sample"`
	FrequencyRecency   *s3_model.Matrix             `json:"frequency_recency_matrix,omitempty" yaml:"frequency_recency_matrix,omitempty"`
	ProbabilityAlive   *s3_model.Matrix             `json:"probability_alive_matrix,omitempty" yaml:"probability_alive_matrix,omitempty"`
	PeriodTransactions *s3_model.PeriodTransactions `json:"period_transactions,omitempty" yaml:"period_transactions,omitempty"`
	TopCustomers       []contracts.ScoredCustomer   `json:"top_customers" yaml:"top_customers"`

	// run metadata
	RunID          string                     `json:"run_id" yaml:"run_id"`
	Source         string                     `json:"source,omitempty" yaml:"source,omitempty"`
	ObservationEnd string                     `json:"observation_end" yaml:"observation_end"`
	GeneratedAt    time.Time                  `json:"generated_at" yaml:"generated_at"`
	Customers      int                        `json:"customers" yaml:"customers"`
	Parameters     *Parameters                `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Stages         []contracts.PipelineResult `json:"stages" yaml:"stages"`
}

// New builds the report of a run. Customer metrics are rounded to 2 decimals here only.
func New(result *brain.RunResult, source string) *Report {
	r := &Report{
		Title:          Title,
		Introduction:   Introduction,
		Sample:         result.Sample,
		RunID:          result.RunID,
		Source:         source,
		ObservationEnd: result.ObservationEnd.Format(time.DateOnly),
		GeneratedAt:    time.Now().UTC(),
		Customers:      len(result.Summaries),
		Stages:         result.Stages,
		TopCustomers:   RoundCustomers(result.TopCustomers),
	}

	if m := result.Model; m != nil {
		r.FrequencyRecency = &m.Diagnostics.FrequencyRecency
		r.ProbabilityAlive = &m.Diagnostics.ProbabilityAlive
		r.PeriodTransactions = &m.Diagnostics.PeriodTransactions
		r.Parameters = &Parameters{BetaGeo: m.Purchase, GammaGamma: m.Monetary}
	}
	return r
}

// RoundCustomers copies customers with display rounding applied
func RoundCustomers(in []contracts.ScoredCustomer) []contracts.ScoredCustomer {
	out := make([]contracts.ScoredCustomer, len(in))
	for i, c := range in {
		c.MonetaryValue = selection.RoundCents(c.MonetaryValue)
		c.PredictedPurchases = selection.RoundCents(c.PredictedPurchases)
		c.PredictedAvgValue = selection.RoundCents(c.PredictedAvgValue)
		c.CLV = selection.RoundCents(c.CLV)
		c.ProbabilityAlive = selection.RoundCents(c.ProbabilityAlive)
		out[i] = c
	}
	return out
}
