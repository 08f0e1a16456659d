package s3_model

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

// cohort deterministic mix of one-off, loyal and lapsed customers
func cohort(n int) []contracts.CustomerSummary {
	out := make([]contracts.CustomerSummary, n)
	for i := range out {
		T := float64(40 + (i*53)%330)
		s := contracts.CustomerSummary{CustomerID: fmt.Sprintf("%d", 12346+i), T: T}
		switch i % 10 {
		case 4:
			s.Frequency, s.Recency = 1, math.Floor(T*0.3)
		case 5:
			s.Frequency, s.Recency = 1, math.Floor(T*0.8)
		case 6:
			s.Frequency, s.Recency = 2, math.Floor(T*0.5)
		case 7:
			s.Frequency, s.Recency = 3, math.Floor(T*0.9)
		case 8:
			s.Frequency, s.Recency = 5, math.Floor(T*0.2)
		case 9:
			s.Frequency, s.Recency = 8, math.Floor(T*0.95)
		}
		if s.Frequency > 0 {
			s.MonetaryValue = 5.5 + float64((i*17)%60)
		}
		out[i] = s
	}
	return out
}

func TestFitBetaGeo(t *testing.T) {
	m, err := FitBetaGeo(cohort(400))
	require.NoError(t, err)

	for name, v := range map[string]float64{"r": m.R, "alpha": m.Alpha, "a": m.A, "b": m.B} {
		assert.True(t, isFinite(v) && v > 0, "%s = %v", name, v)
	}
	assert.True(t, isFinite(m.LogLikelihood))
	assert.Positive(t, m.Evaluations)
}

func TestFitBetaGeo_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		in   []contracts.CustomerSummary
	}{
		{"empty", nil},
		{"all single purchase", []contracts.CustomerSummary{
			{CustomerID: "1", T: 100}, {CustomerID: "2", T: 50}, {CustomerID: "3", T: 10},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitBetaGeo(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, contracts.ErrModelFit)
		})
	}
}

func TestFitGammaGamma(t *testing.T) {
	m, err := FitGammaGamma(cohort(400))
	require.NoError(t, err)

	assert.Greater(t, m.Q, 1.0)
	assert.Positive(t, m.P)
	assert.Positive(t, m.V)
	assert.Equal(t, 240, m.Customers)
	assert.Positive(t, m.PopulationMean())
}

func TestFitGammaGamma_Degenerate(t *testing.T) {
	_, err := FitGammaGamma([]contracts.CustomerSummary{{CustomerID: "1", T: 10}})
	assert.ErrorIs(t, err, contracts.ErrModelFit)

	_, err = FitGammaGamma([]contracts.CustomerSummary{
		{CustomerID: "1", Frequency: 2, Recency: 5, T: 10, MonetaryValue: 0},
	})
	var fitErr *contracts.ModelFitError
	require.ErrorAs(t, err, &fitErr)
	assert.Equal(t, GammaGammaModel, fitErr.Model)
}

func TestPipeline_Run(t *testing.T) {
	summaries := cohort(400)
	p := NewPipeline(logger.Nop(), DefaultOptions())

	res, err := p.Run(context.Background(), summaries)
	require.NoError(t, err)
	require.Len(t, res.Scored, len(summaries))

	for i, s := range res.Scored {
		assert.Equal(t, summaries[i], s.CustomerSummary)
		assert.GreaterOrEqual(t, s.PredictedPurchases, 0.0)
		assert.GreaterOrEqual(t, s.PredictedAvgValue, 0.0)
		assert.GreaterOrEqual(t, s.CLV, 0.0)
		assert.True(t, s.ProbabilityAlive >= 0 && s.ProbabilityAlive <= 1)
		assert.Zero(t, s.Rank)

		// single-purchase customers are scored with the population mean
		if !s.IsRepeat() {
			assert.InDelta(t, res.Monetary.PopulationMean(), s.PredictedAvgValue, 1e-9)
			assert.Positive(t, s.CLV)
		}
	}

	pt := res.Diagnostics.PeriodTransactions
	require.Len(t, pt.Actual, PeriodTransactionBins)
	assert.Equal(t, 160, pt.Actual[0])
	assert.Equal(t, 80, pt.Actual[1])
	var expected float64
	for _, v := range pt.Expected {
		expected += v
	}
	assert.LessOrEqual(t, expected, float64(len(summaries))+1e-6)

	fr := res.Diagnostics.FrequencyRecency
	assert.Equal(t, 1.0, fr.Horizon)
	assert.Len(t, fr.Values, len(fr.Frequencies))
	assert.Len(t, fr.Values[0], len(fr.Recencies))
}

func TestPipeline_Deterministic(t *testing.T) {
	summaries := cohort(200)
	p := NewPipeline(logger.Nop(), DefaultOptions())

	first, err := p.Run(context.Background(), summaries)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), summaries)
	require.NoError(t, err)

	assert.Equal(t, first.Scored, second.Scored)
	assert.Equal(t, first.Purchase, second.Purchase)
	assert.Equal(t, first.Monetary, second.Monetary)
}

func TestPipeline_DegenerateInputAborts(t *testing.T) {
	p := NewPipeline(logger.Nop(), DefaultOptions())

	res, err := p.Run(context.Background(), []contracts.CustomerSummary{
		{CustomerID: "1", T: 30}, {CustomerID: "2", T: 60},
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, contracts.ErrModelFit)
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(logger.Nop(), DefaultOptions()).Run(ctx, cohort(100))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGrid(t *testing.T) {
	summaries := []contracts.CustomerSummary{
		{Frequency: 25, Recency: 90, T: 95},
		{Frequency: 0, T: 40},
	}

	g := newGrid("x", summaries, 10)
	assert.Equal(t, []int{0, 10, 20, 25}, g.Frequencies)
	require.Len(t, g.Recencies, 11)
	assert.Equal(t, 0.0, g.Recencies[0])
	assert.Equal(t, 95.0, g.Recencies[10])
	assert.Equal(t, 95.0, g.T)

	g = newGrid("x", summaries, 0)
	assert.Len(t, g.Frequencies, 26)
	assert.Len(t, g.Recencies, 96)
}
