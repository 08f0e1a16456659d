package s3_model

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// =============================================================================
// 특수 함수
// =============================================================================

// lgamma log Γ(x), x > 0
func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// lbeta log B(a, b)
func lbeta(a, b float64) float64 {
	return mathext.Lbeta(a, b)
}

// hyp2f1 ₂F₁(a, b; c; z) for 0 <= z < 1 as a power series.
// 결과는 부호와 log|값| 으로 반환 (c < 0 이면 음수 가능, 큰 값은 재스케일).
// 수렴하지 않으면 (c 가 0 이하 정수, 반복 초과) logAbs = NaN.
func hyp2f1(a, b, c, z float64) (sign, logAbs float64) {
	if z == 0 {
		return 1, 0
	}
	if z < 0 || z >= 1 {
		return 1, math.NaN()
	}

	const (
		eps      = 1e-15
		maxTerms = 100000
		rescale  = 1e200
	)
	term, sum, offset := 1.0, 1.0, 0.0
	for k := 0.0; k < maxTerms; k++ {
		if c+k == 0 {
			return 1, math.NaN()
		}
		ratio := (a + k) * (b + k) / ((c + k) * (k + 1)) * z
		term *= ratio
		sum += term

		if math.Abs(sum) > rescale {
			sum /= rescale
			term /= rescale
			offset += math.Log(rescale)
		}

		// 남은 항이 단조 감소 구간 (c+k > 0, 비율 < 1) 에서만 종료
		next := math.Abs((a + k + 1) * (b + k + 1) / ((c + k + 1) * (k + 2)) * z)
		if term == 0 || (c+k > 0 && next < 1 && math.Abs(term)*next/(1-next) <= eps*math.Abs(sum)) {
			if sum < 0 {
				return -1, math.Log(-sum) + offset
			}
			return 1, math.Log(sum) + offset
		}
	}
	return 1, math.NaN()
}

// logSumExp log(e^x + e^y), stable for large magnitudes
func logSumExp(x, y float64) float64 {
	if math.IsInf(x, -1) {
		return y
	}
	if math.IsInf(y, -1) {
		return x
	}
	m := math.Max(x, y)
	return m + math.Log(math.Exp(x-m)+math.Exp(y-m))
}

// expit logistic function 1 / (1 + e^-x)
func expit(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
