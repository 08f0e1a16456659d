package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wonny/clv/internal/brain"
	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/internal/report"
	"github.com/wonny/clv/pkg/logger"
)

// MaxTopCustomers upper bound of ?n= on /api/customers/top
const MaxTopCustomers = 1000

// Runner runs the pipeline once
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// Source is the cached transaction source
type Source interface {
	Reset()
	SourceName() string
}

// ReportHandler handles pipeline endpoints. Every request is a fresh run.
// ⭐ SSOT: 리포트 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	runner Runner
	source Source
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(runner Runner, source Source, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		runner: runner,
		source: source,
		logger: log.Component("api"),
	}
}

// GetReport runs the pipeline and returns the full report
// GET /api/report?format=json|yaml
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	format := report.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := report.ParseFormat(q)
		if err != nil || f == report.FormatText {
			respondError(w, http.StatusBadRequest, "format must be json or yaml")
			return
		}
		format = f
	}

	result, err := h.runner.Run(r.Context(), brain.DefaultRunConfig())
	if err != nil {
		h.logger.WithError(err).Error("Failed to run pipeline")
		respondPipelineError(w, err)
		return
	}

	rep := report.New(result, h.source.SourceName())
	if format == report.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if err := report.Render(w, rep, format); err != nil {
			h.logger.WithError(err).Error("Failed to render report")
		}
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// TopCustomersResponse body of /api/customers/top
type TopCustomersResponse struct {
	RunID     string                     `json:"run_id"`
	Count     int                        `json:"count"`
	Customers []contracts.ScoredCustomer `json:"customers"`
}

// GetTopCustomers returns the top n customers by CLV
// GET /api/customers/top?n=10
func (h *ReportHandler) GetTopCustomers(w http.ResponseWriter, r *http.Request) {
	n := contracts.TopCustomers
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > MaxTopCustomers {
			respondError(w, http.StatusBadRequest, "n must be an integer between 1 and 1000")
			return
		}
		n = v
	}

	config := brain.DefaultRunConfig()
	config.TopN = n

	result, err := h.runner.Run(r.Context(), config)
	if err != nil {
		h.logger.WithError(err).Error("Failed to run pipeline")
		respondPipelineError(w, err)
		return
	}

	customers := report.RoundCustomers(result.TopCustomers)
	respondJSON(w, http.StatusOK, TopCustomersResponse{
		RunID:     result.RunID,
		Count:     len(customers),
		Customers: customers,
	})
}

// ReloadSource drops the cached transaction log; the next run re-reads the source
// POST /api/source/reload
func (h *ReportHandler) ReloadSource(w http.ResponseWriter, r *http.Request) {
	h.source.Reset()

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "reloaded",
		"source": h.source.SourceName(),
	})
}
