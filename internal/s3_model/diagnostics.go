package s3_model

import (
	"maps"
	"math"
	"slices"

	"github.com/wonny/clv/internal/contracts"
)

// PeriodTransactionBins repeat-purchase counts 0..6 shown in the fit diagnostic
const PeriodTransactionBins = 7

// DefaultGridStep frequency/recency sampling step of the matrices
const DefaultGridStep = 10

// Matrix values over a (frequency, recency) grid at T = max T
// Values[i][j] 는 Frequencies[i], Recencies[j] 에 해당
type Matrix struct {
	Title       string      `json:"title" yaml:"title"`
	T           float64     `json:"T" yaml:"T"`
	Horizon     float64     `json:"horizon,omitempty" yaml:"horizon,omitempty"`
	Frequencies []int       `json:"frequencies" yaml:"frequencies"`
	Recencies   []float64   `json:"recencies" yaml:"recencies"`
	Values      [][]float64 `json:"values" yaml:"values"`
}

// PeriodTransactions actual vs model-expected customers per repeat-purchase count
type PeriodTransactions struct {
	Counts   []int     `json:"counts" yaml:"counts"` // 0..6 repeat purchases
	Actual   []int     `json:"actual" yaml:"actual"`
	Expected []float64 `json:"expected" yaml:"expected"`
}

// Diagnostics model-fit visualisations
type Diagnostics struct {
	FrequencyRecency   Matrix             `json:"frequency_recency" yaml:"frequency_recency"`
	ProbabilityAlive   Matrix             `json:"probability_alive" yaml:"probability_alive"`
	PeriodTransactions PeriodTransactions `json:"period_transactions" yaml:"period_transactions"`
}

// BuildDiagnostics builds both matrices and the period-transactions diagnostic
func BuildDiagnostics(m *BetaGeo, summaries []contracts.CustomerSummary, step int) Diagnostics {
	return Diagnostics{
		FrequencyRecency:   FrequencyRecencyMatrix(m, summaries, step),
		ProbabilityAlive:   ProbabilityAliveMatrix(m, summaries, step),
		PeriodTransactions: BuildPeriodTransactions(m, summaries),
	}
}

// FrequencyRecencyMatrix expected purchases in the next day for every grid cell
func FrequencyRecencyMatrix(m *BetaGeo, summaries []contracts.CustomerSummary, step int) Matrix {
	mat := newGrid("Expected Number of Future Purchases for 1 Unit of Time, by Frequency and Recency of a Customer", summaries, step)
	mat.Horizon = 1
	mat.fill(func(c contracts.CustomerSummary) float64 {
		return m.ExpectedPurchases(1, c)
	})
	return mat
}

// ProbabilityAliveMatrix P(alive) for every grid cell
func ProbabilityAliveMatrix(m *BetaGeo, summaries []contracts.CustomerSummary, step int) Matrix {
	mat := newGrid("Probability Customer is Alive, by Frequency and Recency of a Customer", summaries, step)
	mat.fill(m.ProbabilityAlive)
	return mat
}

// newGrid frequency 0..max, recency 0..max T, both axes including their maximum
func newGrid(title string, summaries []contracts.CustomerSummary, step int) Matrix {
	if step < 1 {
		step = 1
	}
	maxFreq := 0
	maxT := 0.0
	for _, s := range summaries {
		maxFreq = max(maxFreq, s.Frequency)
		maxT = math.Max(maxT, s.T)
	}

	mat := Matrix{Title: title, T: maxT}
	for f := 0; f <= maxFreq; f += step {
		mat.Frequencies = append(mat.Frequencies, f)
	}
	if mat.Frequencies[len(mat.Frequencies)-1] != maxFreq {
		mat.Frequencies = append(mat.Frequencies, maxFreq)
	}
	maxRecency := int(maxT)
	for r := 0; r <= maxRecency; r += step {
		mat.Recencies = append(mat.Recencies, float64(r))
	}
	if int(mat.Recencies[len(mat.Recencies)-1]) != maxRecency {
		mat.Recencies = append(mat.Recencies, float64(maxRecency))
	}
	return mat
}

func (mat *Matrix) fill(f func(c contracts.CustomerSummary) float64) {
	mat.Values = make([][]float64, len(mat.Frequencies))
	for i, freq := range mat.Frequencies {
		row := make([]float64, len(mat.Recencies))
		for j, rec := range mat.Recencies {
			row[j] = f(contracts.CustomerSummary{Frequency: freq, Recency: rec, T: mat.T})
		}
		mat.Values[i] = row
	}
}

// BuildPeriodTransactions 실제 고객 수 vs 모델 기대 고객 수 (재구매 횟수 0..6)
// Expected[x] = Σ_i P(X(T_i) = x)
func BuildPeriodTransactions(m *BetaGeo, summaries []contracts.CustomerSummary) PeriodTransactions {
	pt := PeriodTransactions{
		Counts:   make([]int, PeriodTransactionBins),
		Actual:   make([]int, PeriodTransactionBins),
		Expected: make([]float64, PeriodTransactionBins),
	}
	for x := range pt.Counts {
		pt.Counts[x] = x
	}

	// T 값이 같은 고객이 많으므로 T 별로 묶어 계산
	byT := make(map[float64]int)
	for _, s := range summaries {
		if s.Frequency < PeriodTransactionBins {
			pt.Actual[s.Frequency]++
		}
		byT[s.T]++
	}
	ts := slices.Sorted(maps.Keys(byT))
	for _, t := range ts {
		n := float64(byT[t])
		for x := range pt.Expected {
			pt.Expected[x] += n * m.ProbabilityOfPurchases(t, x)
		}
	}
	return pt
}
