package s3_model

import (
	"fmt"
	"math"

	"github.com/wonny/clv/internal/contracts"
)

// =============================================================================
// Gamma-Gamma 거래 금액 모델
// =============================================================================

// GammaGammaModel name used in errors and logs
const GammaGammaModel = "gamma_gamma"

// GammaGamma is a fitted Gamma-Gamma spend model.
// 거래 금액 z ~ Gamma(p, ν), ν ~ Gamma(q, γ). 필드 V 는 γ.
type GammaGamma struct {
	P float64 `json:"p" yaml:"p"`
	Q float64 `json:"q" yaml:"q"`
	V float64 `json:"v" yaml:"v"`

	LogLikelihood float64 `json:"log_likelihood" yaml:"log_likelihood"`
	Customers     int     `json:"customers" yaml:"customers"` // repeat customers used for the fit
	Evaluations   int     `json:"evaluations" yaml:"evaluations"`
}

// FitGammaGamma fits p, q, v on repeat customers only (Frequency > 0), no penalty term.
// 재구매 없는 고객은 적합에서 제외되지만 예측은 받음 (모집단 평균).
func FitGammaGamma(summaries []contracts.CustomerSummary) (*GammaGamma, error) {
	var x, m []float64
	for _, s := range summaries {
		if !s.IsRepeat() {
			continue
		}
		if s.MonetaryValue <= 0 {
			return nil, &contracts.ModelFitError{
				Model:  GammaGammaModel,
				Reason: fmt.Sprintf("customer %s has non-positive monetary value %.4f", s.CustomerID, s.MonetaryValue),
			}
		}
		x = append(x, float64(s.Frequency))
		m = append(m, s.MonetaryValue)
	}
	if len(x) == 0 {
		return nil, &contracts.ModelFitError{Model: GammaGammaModel, Reason: "degenerate input: no customer with a repeat purchase"}
	}

	n := float64(len(x))
	negLL := func(params []float64) float64 {
		p, q, v := math.Exp(params[0]), math.Exp(params[1]), math.Exp(params[2])
		var sum float64
		for i := range x {
			sum += gammaGammaLogLikelihood(p, q, v, x[i], m[i])
		}
		return -sum / n
	}

	res, err := minimizeLogParams(GammaGammaModel, 3, negLL)
	if err != nil {
		return nil, err
	}

	gg := &GammaGamma{
		P:             math.Exp(res.X[0]),
		Q:             math.Exp(res.X[1]),
		V:             math.Exp(res.X[2]),
		LogLikelihood: -res.NegLL,
		Customers:     len(x),
		Evaluations:   res.Evaluations,
	}
	// E[ν⁻¹] 이 정의되려면 q > 1
	if gg.Q <= 1 {
		return nil, &contracts.ModelFitError{Model: GammaGammaModel, Reason: fmt.Sprintf("q = %.4f <= 1, population mean undefined", gg.Q)}
	}
	return gg, nil
}

// gammaGammaLogLikelihood 고객 1명의 로그우도 (x: 재구매 횟수, m: 평균 금액)
func gammaGammaLogLikelihood(p, q, v, x, m float64) float64 {
	px := p * x
	return lgamma(px+q) - lgamma(px) - lgamma(q) +
		q*math.Log(v) +
		(px-1)*math.Log(m) +
		px*math.Log(x) -
		(px+q)*math.Log(x*m+v)
}

// PopulationMean E[Z] = v·p / (q-1)
func (m *GammaGamma) PopulationMean() float64 {
	return m.V * m.P / (m.Q - 1)
}

// ExpectedAverageValue E[Z | x, m]: weighted mix of population mean and observed mean
// w = p·x / (p·x + q - 1)
func (m *GammaGamma) ExpectedAverageValue(c contracts.CustomerSummary) float64 {
	px := m.P * float64(c.Frequency)
	w := px / (px + m.Q - 1)
	return (1-w)*m.PopulationMean() + w*c.MonetaryValue
}
