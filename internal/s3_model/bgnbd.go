package s3_model

import (
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/wonny/clv/internal/contracts"
)

// =============================================================================
// BG/NBD (Beta-Geometric / Negative Binomial) 구매 빈도 모델
// =============================================================================

// BetaGeoModel name used in errors and logs
const BetaGeoModel = "bg_nbd"

// BetaGeo is a fitted BG/NBD model.
// 구매율 λ ~ Gamma(r, α), 이탈 확률 p ~ Beta(a, b). 시간 단위는 일(day).
type BetaGeo struct {
	R     float64 `json:"r" yaml:"r"`
	Alpha float64 `json:"alpha" yaml:"alpha"`
	A     float64 `json:"a" yaml:"a"`
	B     float64 `json:"b" yaml:"b"`

	LogLikelihood float64 `json:"log_likelihood" yaml:"log_likelihood"` // mean per customer, scaled time
	Evaluations   int     `json:"evaluations" yaml:"evaluations"`
}

// FitBetaGeo fits r, α, a, b by maximum likelihood with no penalty term.
// 시간은 10 / max(T) 로 스케일 후 적합, α 는 원래 단위로 되돌림.
func FitBetaGeo(summaries []contracts.CustomerSummary) (*BetaGeo, error) {
	if len(summaries) == 0 {
		return nil, &contracts.ModelFitError{Model: BetaGeoModel, Reason: "no customers"}
	}

	maxT := 0.0
	repeat := 0
	for _, s := range summaries {
		maxT = math.Max(maxT, s.T)
		if s.Frequency > 0 && s.Recency > 0 {
			repeat++
		}
	}
	if repeat == 0 {
		return nil, &contracts.ModelFitError{Model: BetaGeoModel, Reason: "degenerate input: no customer with a repeat purchase"}
	}
	if maxT <= 0 {
		return nil, &contracts.ModelFitError{Model: BetaGeoModel, Reason: "degenerate input: observation span is zero"}
	}

	scale := 10 / maxT
	n := len(summaries)
	x := make([]float64, n)
	tx := make([]float64, n)
	T := make([]float64, n)
	for i, s := range summaries {
		x[i] = float64(s.Frequency)
		tx[i] = s.Recency * scale
		T[i] = s.T * scale
	}

	negLL := func(p []float64) float64 {
		r, alpha, a, b := math.Exp(p[0]), math.Exp(p[1]), math.Exp(p[2]), math.Exp(p[3])
		var sum float64
		for i := range x {
			sum += betaGeoLogLikelihood(r, alpha, a, b, x[i], tx[i], T[i])
		}
		return -sum / float64(n)
	}

	res, err := minimizeLogParams(BetaGeoModel, 4, negLL)
	if err != nil {
		return nil, err
	}

	return &BetaGeo{
		R:             math.Exp(res.X[0]),
		Alpha:         math.Exp(res.X[1]) / scale,
		A:             math.Exp(res.X[2]),
		B:             math.Exp(res.X[3]),
		LogLikelihood: -res.NegLL,
		Evaluations:   res.Evaluations,
	}, nil
}

// betaGeoLogLikelihood 고객 1명의 로그우도
// LL = A1 + A2 + log(e^A3 + [x>0]·e^A4)
func betaGeoLogLikelihood(r, alpha, a, b, x, tx, T float64) float64 {
	a1 := lgamma(r+x) - lgamma(r) + r*math.Log(alpha)
	a2 := lgamma(a+b) + lgamma(b+x) - lgamma(b) - lgamma(a+b+x)
	a3 := -(r + x) * math.Log(alpha+T)
	a4 := math.Inf(-1)
	if x > 0 {
		a4 = math.Log(a) - math.Log(b+x-1) - (r+x)*math.Log(alpha+tx)
	}
	return a1 + a2 + logSumExp(a3, a4)
}

// ExpectedPurchases E[X(T, T+t] | x, tx, T]: expected purchases in the next t days
func (m *BetaGeo) ExpectedPurchases(t float64, c contracts.CustomerSummary) float64 {
	if t <= 0 {
		return 0
	}
	x := float64(c.Frequency)

	denominator := 1.0
	if x > 0 {
		denominator += m.A / (m.B + x - 1) * math.Pow((m.Alpha+c.T)/(m.Alpha+c.Recency), m.R+x)
	}

	v := m.purchasesNumerator(t, x, c.T) / denominator
	if v < 0 && v > -1e-12 {
		return 0
	}
	return v
}

// purchasesNumerator (a+b+x-1)/(a-1) · [1 - ₂F₁(r+x, b+x; a+b+x-1; z) · ((α+T)/(α+t+T))^(r+x)],
// z = t/(α+T+t). a+b+x-1 < 0 이면 ₂F₁ 이 음수이므로 부호를 유지한 채 계산.
func (m *BetaGeo) purchasesNumerator(t, x, T float64) float64 {
	r, alpha, a, b := m.R, m.Alpha, m.A, m.B

	sign, lnHyp := hyp2f1(r+x, b+x, a+b+x-1, t/(alpha+T+t))
	h := sign * math.Exp(lnHyp+(r+x)*math.Log((alpha+T)/(alpha+t+T)))

	return (a + b + x - 1) / (a - 1) * (1 - h)
}

// ProbabilityAlive P(alive | x, tx, T). 재구매가 없는 고객은 1.
func (m *BetaGeo) ProbabilityAlive(c contracts.CustomerSummary) float64 {
	if c.Frequency == 0 {
		return 1
	}
	x := float64(c.Frequency)
	logDiv := (m.R+x)*math.Log((m.Alpha+c.T)/(m.Alpha+c.Recency)) + math.Log(m.A/(m.B+x-1))
	return expit(-logDiv)
}

// ExpectedPurchasesNewCustomer E[X(t)] for a customer observed from t = 0
func (m *BetaGeo) ExpectedPurchasesNewCustomer(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return m.purchasesNumerator(t, 0, 0)
}

// ProbabilityOfPurchases P(X(t) = n): probability of exactly n repeat purchases in (0, t]
func (m *BetaGeo) ProbabilityOfPurchases(t float64, n int) float64 {
	if n < 0 {
		return 0
	}
	if t <= 0 {
		if n == 0 {
			return 1
		}
		return 0
	}
	r, alpha, a, b := m.R, m.Alpha, m.A, m.B
	k := float64(n)
	lnRate := math.Log(alpha / (alpha + t)) // log(α/(α+t))
	lnOdds := math.Log(t / (alpha + t))     // log(t/(α+t))

	first := math.Exp(lbeta(a, b+k) - lbeta(a, b) +
		lgamma(r+k) - lgamma(r) - lgamma(k+1) +
		r*lnRate + k*lnOdds)
	if n == 0 {
		return first
	}

	// 1 - (α/(α+t))^r · Σ_{j<n} NB(j) = P(NB >= n) = I_{t/(α+t)}(n, r)
	tail := mathext.RegIncBeta(k, r, t/(alpha+t))
	second := math.Exp(lbeta(a+1, b+k-1)-lbeta(a, b)) * tail

	return first + second
}
