package s3_model

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

// Options S3 settings that are not part of the model definition
type Options struct {
	GridStep int // diagnostics matrix sampling step
}

// DefaultOptions returns default options
func DefaultOptions() Options {
	return Options{GridStep: DefaultGridStep}
}

// Result S3 출력: 점수가 매겨진 고객 + 적합된 모델 + 진단
type Result struct {
	Scored      []contracts.ScoredCustomer `json:"scored" yaml:"scored"`
	Purchase    *BetaGeo                   `json:"bg_nbd" yaml:"bg_nbd"`
	Monetary    *GammaGamma                `json:"gamma_gamma" yaml:"gamma_gamma"`
	Diagnostics Diagnostics                `json:"diagnostics" yaml:"diagnostics"`
}

// Pipeline implements S3: model fitting and per-customer metrics
// ⭐ SSOT: 순서 고정 a → b → c → d → e (뒤 단계가 앞 단계 결과를 사용)
type Pipeline struct {
	logger  *logger.Logger
	opts    Options
	horizon CLVHorizon
}

// NewPipeline creates a new model pipeline
func NewPipeline(log *logger.Logger, opts Options) *Pipeline {
	if opts.GridStep < 1 {
		opts.GridStep = DefaultGridStep
	}
	return &Pipeline{
		logger:  log.Component("s3_model"),
		opts:    opts,
		horizon: DefaultCLVHorizon(),
	}
}

// Run fits both models and scores every customer.
// 적합 실패 시 ModelFitError 로 중단 (대체 모델/기본 파라미터 없음)
func (p *Pipeline) Run(ctx context.Context, summaries []contracts.CustomerSummary) (*Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// a. BG/NBD fit
	bgf, err := FitBetaGeo(summaries)
	if err != nil {
		return nil, err
	}
	p.logger.WithFields(map[string]interface{}{
		"r": bgf.R, "alpha": bgf.Alpha, "a": bgf.A, "b": bgf.B,
		"log_likelihood": bgf.LogLikelihood,
		"evaluations":    bgf.Evaluations,
	}).Info("bg/nbd fitted")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// b. expected purchases over the short horizon, every customer
	scored := make([]contracts.ScoredCustomer, len(summaries))
	for i, s := range summaries {
		scored[i] = contracts.ScoredCustomer{
			CustomerSummary:    s,
			PredictedPurchases: bgf.ExpectedPurchases(contracts.PurchaseHorizonDays, s),
			ProbabilityAlive:   bgf.ProbabilityAlive(s),
		}
	}

	// c. Gamma-Gamma fit on repeat customers
	ggf, err := FitGammaGamma(summaries)
	if err != nil {
		return nil, err
	}
	p.logger.WithFields(map[string]interface{}{
		"p": ggf.P, "q": ggf.Q, "v": ggf.V,
		"customers":       ggf.Customers,
		"population_mean": ggf.PopulationMean(),
		"evaluations":     ggf.Evaluations,
	}).Info("gamma-gamma fitted")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// d, e. expected average value and CLV, every customer
	for i := range scored {
		s := scored[i].CustomerSummary
		scored[i].PredictedAvgValue = ggf.ExpectedAverageValue(s)
		scored[i].CLV = CustomerLifetimeValue(bgf, scored[i].PredictedAvgValue, s, p.horizon)
	}

	if err := checkScores(scored); err != nil {
		return nil, err
	}

	diag := BuildDiagnostics(bgf, summaries, p.opts.GridStep)

	p.logger.WithFields(map[string]interface{}{
		"customers": len(scored),
		"duration":  time.Since(start).String(),
	}).Info("customers scored")

	return &Result{
		Scored:      scored,
		Purchase:    bgf,
		Monetary:    ggf,
		Diagnostics: diag,
	}, nil
}

// checkScores 모든 예측값은 유한하고 음수가 아니어야 함
func checkScores(scored []contracts.ScoredCustomer) error {
	for _, s := range scored {
		values := [...]struct {
			name string
			v    float64
		}{
			{"pred_num_txn", s.PredictedPurchases},
			{"pred_txn_value", s.PredictedAvgValue},
			{"clv", s.CLV},
		}
		for _, f := range values {
			if !isFinite(f.v) || f.v < 0 {
				return &contracts.ModelFitError{
					Model:  "clv",
					Reason: fmt.Sprintf("customer %s: %s = %v", s.CustomerID, f.name, f.v),
				}
			}
		}
	}
	return nil
}
