package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/internal/s1_prepare"
	"github.com/wonny/clv/internal/s3_model"
	"github.com/wonny/clv/pkg/logger"
)

// DefaultSampleSize raw rows kept for display
const DefaultSampleSize = 5

// Orchestrator coordinates the 5-stage pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Stage components
	loader       contracts.Loader
	preprocessor *s1_prepare.Preprocessor
	summarizer   contracts.Summarizer
	model        *s3_model.Pipeline
	ranker       contracts.Ranker

	onStage func(contracts.PipelineResult)
	logger  *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID          string
	ObservationEnd time.Time
	TopN           int
	SampleSize     int
}

// DefaultRunConfig fixed cutoff, top 10, 5 sample rows, fresh run id
func DefaultRunConfig() RunConfig {
	return RunConfig{
		RunID:          GenerateRunID(),
		ObservationEnd: contracts.ObservationEnd,
		TopN:           contracts.TopCustomers,
		SampleSize:     DefaultSampleSize,
	}
}

// RunResult holds the results of a pipeline run
// 모든 레코드는 실행마다 새로 생성 (저장하지 않음)
type RunResult struct {
	RunID           string
	ObservationEnd  time.Time
	Success         bool
	Error           error
	CompletedStages []string
	Stages          []contracts.PipelineResult
	Sample          []contracts.RawTransaction
	PrepareStats    s1_prepare.Stats
	Summaries       []contracts.CustomerSummary
	Model           *s3_model.Result
	TopCustomers    []contracts.ScoredCustomer
	StartedAt       time.Time
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	loader contracts.Loader,
	preprocessor *s1_prepare.Preprocessor,
	summarizer contracts.Summarizer,
	model *s3_model.Pipeline,
	ranker contracts.Ranker,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		loader:       loader,
		preprocessor: preprocessor,
		summarizer:   summarizer,
		model:        model,
		ranker:       ranker,
		logger:       logger.Component("brain"),
	}
}

// OnStage registers a callback invoked after every stage, successful or not
func (o *Orchestrator) OnStage(fn func(contracts.PipelineResult)) {
	o.onStage = fn
}

// Run executes the complete pipeline
// S0 → S1 → S2 → S3 → S4
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	result, err := o.summarize(ctx, config)
	if err != nil {
		return result, err
	}

	// S3: Model
	modelResult, err := o.runS3(ctx, result)
	if err != nil {
		return o.fail(result, contracts.StageModel, err)
	}
	result.Model = modelResult
	result.CompletedStages = append(result.CompletedStages, "S3:Model")

	// S4: Rank
	top, err := o.runS4(ctx, config, result)
	if err != nil {
		return o.fail(result, contracts.StageRank, err)
	}
	result.TopCustomers = top
	result.CompletedStages = append(result.CompletedStages, "S4:Rank")

	return o.succeed(result), nil
}

// Summarize executes S0 → S2 only (customer summary without models)
func (o *Orchestrator) Summarize(ctx context.Context, config RunConfig) (*RunResult, error) {
	result, err := o.summarize(ctx, config)
	if err != nil {
		return result, err
	}
	return o.succeed(result), nil
}

func (o *Orchestrator) summarize(ctx context.Context, config RunConfig) (*RunResult, error) {
	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	if config.ObservationEnd.IsZero() {
		config.ObservationEnd = contracts.ObservationEnd
	}

	result := &RunResult{
		RunID:           config.RunID,
		ObservationEnd:  config.ObservationEnd,
		Success:         false,
		CompletedStages: make([]string, 0),
		StartedAt:       time.Now(),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":          config.RunID,
		"observation_end": config.ObservationEnd.Format("2006-01-02"),
		"top_n":           config.TopN,
	}).Info("Starting pipeline run")

	// S0: Load
	raw, err := o.runS0(ctx, result)
	if err != nil {
		return o.fail(result, contracts.StageLoad, err)
	}
	sampleSize := config.SampleSize
	if sampleSize > len(raw) {
		sampleSize = len(raw)
	}
	if sampleSize > 0 {
		result.Sample = raw[:sampleSize:sampleSize]
	}
	result.CompletedStages = append(result.CompletedStages, "S0:Load")

	// S1: Prepare
	txs, err := o.runS1(ctx, result, raw)
	if err != nil {
		return o.fail(result, contracts.StagePrepare, err)
	}
	result.CompletedStages = append(result.CompletedStages, "S1:Prepare")

	// S2: Summary
	summaries, err := o.runS2(ctx, result, txs)
	if err != nil {
		return o.fail(result, contracts.StageSummary, err)
	}
	result.Summaries = summaries
	result.CompletedStages = append(result.CompletedStages, "S2:Summary")

	return result, nil
}

// runS0 executes S0: Load
func (o *Orchestrator) runS0(ctx context.Context, result *RunResult) ([]contracts.RawTransaction, error) {
	o.logger.Info("Running S0: Load")
	start := time.Now()

	raw, err := o.loader.Load(ctx)
	if err != nil {
		o.record(result, contracts.StageLoad, 0, 0, start, err, nil)
		return nil, err
	}

	o.record(result, contracts.StageLoad, 0, len(raw), start, nil, nil)
	return raw, nil
}

// runS1 executes S1: Prepare
func (o *Orchestrator) runS1(ctx context.Context, result *RunResult, raw []contracts.RawTransaction) ([]contracts.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Info("Running S1: Prepare")
	start := time.Now()

	txs, stats, err := o.preprocessor.PrepareWithStats(ctx, raw)
	if err != nil {
		o.record(result, contracts.StagePrepare, len(raw), 0, start, err, nil)
		return nil, err
	}
	result.PrepareStats = stats

	o.record(result, contracts.StagePrepare, len(raw), len(txs), start, nil, map[string]interface{}{
		"dropped_no_customer":           stats.DroppedNoCustomer,
		"dropped_non_positive_quantity": stats.DroppedNonPositive,
	})
	return txs, nil
}

// runS2 executes S2: Summary
func (o *Orchestrator) runS2(ctx context.Context, result *RunResult, txs []contracts.Transaction) ([]contracts.CustomerSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Info("Running S2: Summary")
	start := time.Now()

	summaries, err := o.summarizer.Summarize(ctx, txs, result.ObservationEnd)
	if err != nil {
		o.record(result, contracts.StageSummary, len(txs), 0, start, err, nil)
		return nil, err
	}

	repeat := 0
	for _, s := range summaries {
		if s.IsRepeat() {
			repeat++
		}
	}
	o.record(result, contracts.StageSummary, len(txs), len(summaries), start, nil, map[string]interface{}{
		"repeat_customers": repeat,
	})
	return summaries, nil
}

// runS3 executes S3: Model
func (o *Orchestrator) runS3(ctx context.Context, result *RunResult) (*s3_model.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Info("Running S3: Model")
	start := time.Now()

	res, err := o.model.Run(ctx, result.Summaries)
	if err != nil {
		o.record(result, contracts.StageModel, len(result.Summaries), 0, start, err, nil)
		return nil, err
	}

	o.record(result, contracts.StageModel, len(result.Summaries), len(res.Scored), start, nil, map[string]interface{}{
		"bg_nbd_evaluations":      res.Purchase.Evaluations,
		"gamma_gamma_evaluations": res.Monetary.Evaluations,
		"gamma_gamma_customers":   res.Monetary.Customers,
	})
	return res, nil
}

// runS4 executes S4: Rank
func (o *Orchestrator) runS4(ctx context.Context, config RunConfig, result *RunResult) ([]contracts.ScoredCustomer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Info("Running S4: Rank")
	start := time.Now()

	top, err := o.ranker.Rank(ctx, result.Model.Scored, config.TopN)
	if err != nil {
		o.record(result, contracts.StageRank, len(result.Model.Scored), 0, start, err, nil)
		return nil, err
	}

	o.record(result, contracts.StageRank, len(result.Model.Scored), len(top), start, nil, nil)
	return top, nil
}

// record appends a stage result and notifies the hook
func (o *Orchestrator) record(result *RunResult, stage contracts.Stage, in, out int, start time.Time, err error, meta map[string]interface{}) {
	pr := contracts.PipelineResult{
		Stage:       stage,
		Success:     err == nil,
		InputCount:  in,
		OutputCount: out,
		Duration:    time.Since(start).Milliseconds(),
		Metadata:    meta,
	}
	if err != nil {
		pr.Error = err.Error()
	}
	result.Stages = append(result.Stages, pr)

	if err == nil {
		o.logger.WithFields(map[string]interface{}{
			"input":       in,
			"output":      out,
			"duration_ms": pr.Duration,
		}).Info(fmt.Sprintf("%s completed", stage.ShortName()))
	}

	if o.onStage != nil {
		o.onStage(pr)
	}
}

// fail wraps the stage error, logs it once and aborts the run
func (o *Orchestrator) fail(result *RunResult, stage contracts.Stage, err error) (*RunResult, error) {
	result.Error = fmt.Errorf("%s failed: %w", stage.ShortName(), err)
	result.Duration = time.Since(result.StartedAt)

	o.logger.WithError(err).WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"stage":  stage.String(),
	}).Error("Pipeline run aborted")

	return result, result.Error
}

func (o *Orchestrator) succeed(result *RunResult) *RunResult {
	result.Success = true
	result.Duration = time.Since(result.StartedAt)

	o.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
	}).Info("Pipeline run completed successfully")

	return result
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s", uuid.NewString())
}
