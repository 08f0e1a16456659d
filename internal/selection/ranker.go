package selection

import (
	"context"
	"math"
	"slices"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

// Ranker implements S4: top customers by CLV
// ⭐ SSOT: S4 랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{
		logger: logger.Component("s4_rank"),
	}
}

// Rank returns the top n customers by descending CLV.
// CLV 는 센트 단위로 반올림 후 비교, 안정 정렬이므로 동점은 입력 순서 유지.
// n <= 0 이면 전체 반환. 입력 슬라이스는 변경하지 않음.
func (r *Ranker) Rank(ctx context.Context, scored []contracts.ScoredCustomer, n int) ([]contracts.ScoredCustomer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := slices.Clone(scored)

	// Sort by CLV (descending)
	slices.SortStableFunc(ranked, func(a, b contracts.ScoredCustomer) int {
		ca, cb := RoundCents(a.CLV), RoundCents(b.CLV)
		switch {
		case ca > cb:
			return -1
		case ca < cb:
			return 1
		default:
			return 0
		}
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}

	// Assign ranks
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	fields := map[string]interface{}{
		"customers": len(scored),
		"top_n":     len(ranked),
	}
	if len(ranked) > 0 {
		fields["top_clv"] = ranked[0].CLV
		fields["top_customer"] = ranked[0].CustomerID
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked, nil
}

// RoundCents rounds to 2 decimal places (display precision)
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
