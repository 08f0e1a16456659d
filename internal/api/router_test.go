package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clv/internal/api/handlers"
	"github.com/wonny/clv/internal/brain"
	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/config"
	"github.com/wonny/clv/pkg/logger"
)

// fakeRunner returns a canned result or error and records the requested top n
type fakeRunner struct {
	err   error
	calls int
	topN  int
}

func (f *fakeRunner) Run(ctx context.Context, cfg brain.RunConfig) (*brain.RunResult, error) {
	f.calls++
	f.topN = cfg.TopN
	if f.err != nil {
		return nil, f.err
	}
	top := []contracts.ScoredCustomer{
		{CustomerSummary: contracts.CustomerSummary{CustomerID: "14646"}, CLV: 1234.5678, Rank: 1},
		{CustomerSummary: contracts.CustomerSummary{CustomerID: "18102"}, CLV: 999.991, Rank: 2},
	}
	if cfg.TopN < len(top) {
		top = top[:cfg.TopN]
	}
	return &brain.RunResult{
		RunID:          cfg.RunID,
		ObservationEnd: contracts.ObservationEnd,
		Success:        true,
		TopCustomers:   top,
	}, nil
}

type fakeSource struct{ resets int }

func (s *fakeSource) Reset()             { s.resets++ }
func (s *fakeSource) SourceName() string { return "csv:test.csv" }

func newTestRouter(runner *fakeRunner, source *fakeSource, apiCfg config.APIConfig) http.Handler {
	h := handlers.NewReportHandler(runner, source, logger.Nop())
	return NewRouter(h, apiCfg, logger.Nop())
}

func generousLimits() config.APIConfig {
	return config.APIConfig{RateLimit: 1000, RateBurst: 1000}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(&fakeRunner{}, &fakeSource{}, generousLimits()), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetReport(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestRouter(runner, &fakeSource{}, generousLimits())

	rec := do(t, h, http.MethodGet, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Customer Lifetime Value Calculator", body["title"])
	assert.Equal(t, "csv:test.csv", body["source"])
	assert.Equal(t, contracts.TopCustomers, runner.topN)

	top := body["top_customers"].([]interface{})
	assert.Equal(t, 1234.57, top[0].(map[string]interface{})["clv"])
}

func TestGetReport_YAML(t *testing.T) {
	h := newTestRouter(&fakeRunner{}, &fakeSource{}, generousLimits())

	rec := do(t, h, http.MethodGet, "/api/report?format=yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "title: Customer Lifetime Value Calculator"))

	rec = do(t, h, http.MethodGet, "/api/report?format=text")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"data load", &contracts.DataLoadError{Source: "csv:x", Reason: "missing column Quantity"}, http.StatusUnprocessableEntity, "data_load"},
		{"parse", &contracts.ParseError{Line: 2, Field: "InvoiceDate", Value: "x"}, http.StatusUnprocessableEntity, "parse"},
		{"model fit", &contracts.ModelFitError{Model: "bg_nbd", Reason: "did not converge"}, http.StatusInternalServerError, "model_fit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeRunner{err: tt.err}, &fakeSource{}, generousLimits())
			rec := do(t, h, http.MethodGet, "/api/report")
			assert.Equal(t, tt.code, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetTopCustomers(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestRouter(runner, &fakeSource{}, generousLimits())

	rec := do(t, h, http.MethodGet, "/api/customers/top?n=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.topN)

	var body handlers.TopCustomersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "14646", body.Customers[0].CustomerID)
	assert.Equal(t, 1234.57, body.Customers[0].CLV)

	for _, bad := range []string{"0", "-1", "abc", "1001"} {
		rec := do(t, h, http.MethodGet, "/api/customers/top?n="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestReloadSource(t *testing.T) {
	source := &fakeSource{}
	h := newTestRouter(&fakeRunner{}, source, generousLimits())

	rec := do(t, h, http.MethodPost, "/api/source/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, source.resets)

	rec = do(t, h, http.MethodGet, "/api/source/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestRouter(runner, &fakeSource{}, config.APIConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/report").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/report").Code)
	assert.Equal(t, 1, runner.calls)

	// health is not limited
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health").Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, handlers.StatusFor(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, handlers.StatusFor(assert.AnError))
}
