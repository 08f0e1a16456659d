package s3_model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/wonny/clv/internal/contracts"
)

const (
	// fitTolerance absolute change of the mean negative log-likelihood treated as converged
	fitTolerance = 1e-10
	// fitMaxEvaluations upper bound on objective evaluations per fit
	fitMaxEvaluations = 200000
)

// fitResult 최적화 결과 (로그 공간 파라미터)
type fitResult struct {
	X           []float64
	NegLL       float64 // mean negative log-likelihood at X
	Evaluations int
	Iterations  int
}

// minimizeLogParams minimises f over log-parameters with Nelder-Mead, starting from log(1) = 0.
// 수렴 실패, 비유한 결과는 ModelFitError (대체 파라미터 없음)
func minimizeLogParams(model string, dim int, f func(x []float64) float64) (*fitResult, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			v := f(x)
			if math.IsNaN(v) {
				return math.Inf(1)
			}
			return v
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: fitMaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   fitTolerance,
			Iterations: 200,
		},
	}

	x0 := make([]float64, dim)
	if v := problem.Func(x0); math.IsInf(v, 0) {
		return nil, &contracts.ModelFitError{Model: model, Reason: "objective not finite at initial point"}
	}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, &contracts.ModelFitError{Model: model, Reason: "optimizer", Err: err}
	}

	switch res.Status {
	case optimize.Failure, optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		return nil, &contracts.ModelFitError{Model: model, Reason: fmt.Sprintf("did not converge: %s", res.Status)}
	}

	if !isFinite(res.F) {
		return nil, &contracts.ModelFitError{Model: model, Reason: "log-likelihood not finite"}
	}
	for _, v := range res.X {
		if !isFinite(v) || !isFinite(math.Exp(v)) || math.Exp(v) == 0 {
			return nil, &contracts.ModelFitError{Model: model, Reason: "parameters diverged"}
		}
	}

	return &fitResult{
		X:           res.X,
		NegLL:       res.F,
		Evaluations: res.FuncEvaluations,
		Iterations:  res.MajorIterations,
	}, nil
}
