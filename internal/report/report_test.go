package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wonny/clv/internal/brain"
	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/internal/s3_model"
)

func sampleRun() *brain.RunResult {
	top := []contracts.ScoredCustomer{
		{
			CustomerSummary:    contracts.CustomerSummary{CustomerID: "14646", Frequency: 44, Recency: 353, T: 354, MonetaryValue: 6366.705909},
			PredictedPurchases: 0.997312,
			PredictedAvgValue:  6383.184201,
			CLV:                225432.087654,
			ProbabilityAlive:   0.9991,
			Rank:               1,
		},
	}
	m := &s3_model.BetaGeo{R: 0.5, Alpha: 5, A: 0.8, B: 2.5}
	return &brain.RunResult{
		RunID:          "run_test",
		ObservationEnd: contracts.ObservationEnd,
		Success:        true,
		Sample: []contracts.RawTransaction{
			{Line: 1, InvoiceNo: "536365", StockCode: "85123A", Description: "WHITE HANGING HEART T-LIGHT HOLDER", Quantity: "6", InvoiceDate: "12/1/2010 8:26", UnitPrice: "2.55", CustomerID: "17850", Country: "United Kingdom"},
		},
		Summaries: make([]contracts.CustomerSummary, 3),
		Stages: []contracts.PipelineResult{
			{Stage: contracts.StageLoad, Success: true, OutputCount: 1, Duration: 3},
		},
		Model: &s3_model.Result{
			Purchase: m,
			Monetary: &s3_model.GammaGamma{P: 2.1, Q: 3.45, V: 485.9, Customers: 2},
			Diagnostics: s3_model.BuildDiagnostics(m, []contracts.CustomerSummary{
				{Frequency: 3, Recency: 20, T: 30},
				{Frequency: 0, T: 10},
			}, 10),
		},
		TopCustomers: top,
		Duration:     time.Second,
	}
}

func TestNew_RoundsForDisplayOnly(t *testing.T) {
	run := sampleRun()
	r := New(run, "csv:OnlineRetail.csv")

	assert.Equal(t, Title, r.Title)
	assert.Equal(t, "2011-12-09", r.ObservationEnd)
	assert.Equal(t, 3, r.Customers)
	require.Len(t, r.TopCustomers, 1)
	assert.Equal(t, 225432.09, r.TopCustomers[0].CLV)
	assert.Equal(t, 1.0, r.TopCustomers[0].PredictedPurchases)
	assert.Equal(t, 6383.18, r.TopCustomers[0].PredictedAvgValue)

	// run records keep full precision
	assert.Equal(t, 225432.087654, run.TopCustomers[0].CLV)
}

func TestNew_WithoutModel(t *testing.T) {
	run := sampleRun()
	run.Model = nil

	r := New(run, "")
	assert.Nil(t, r.FrequencyRecency)
	assert.Nil(t, r.Parameters)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, FormatText))
	assert.NotContains(t, buf.String(), "Model Fit Assessment")
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, New(sampleRun(), "csv:OnlineRetail.csv"), FormatText))
	out := buf.String()

	sections := []string{
		Title,
		"Sample Data:",
		"Frequency/Recency Matrix:",
		"Probability of Being Alive Matrix:",
		"Model Fit Assessment:",
		"Top 10 Customers by CLV:",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, "missing %q", s)
		assert.Greater(t, idx, last, "%q out of order", s)
		last = idx
	}
	assert.Contains(t, out, "225432.09")
	assert.Contains(t, out, "WHITE HANGING HEART T-LIGHT HOLDER")
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, New(sampleRun(), ""), FormatJSON))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, Title, decoded["title"])

	top := decoded["top_customers"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "14646", top["customer_id"])
	assert.Equal(t, 225432.09, top["clv"])
	assert.Equal(t, 354.0, top["T"])
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, New(sampleRun(), ""), FormatYAML))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run_test", decoded["run_id"])

	top := decoded["top_customers"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "14646", top["customer_id"])
	assert.Equal(t, 225432.09, top["clv"])
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
