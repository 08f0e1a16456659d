package contracts

import (
	"context"
	"time"
)

// Loader reads the raw transaction log (S0)
// ⭐ SSOT: S0 로드 인터페이스
type Loader interface {
	Load(ctx context.Context) ([]RawTransaction, error)
}

// Preprocessor cleans raw rows (S1)
// ⭐ SSOT: S1 정제 인터페이스
type Preprocessor interface {
	Prepare(ctx context.Context, raw []RawTransaction) ([]Transaction, error)
}

// Summarizer collapses transactions into one summary per customer (S2)
// ⭐ SSOT: S2 집계 인터페이스
type Summarizer interface {
	Summarize(ctx context.Context, txs []Transaction, observationEnd time.Time) ([]CustomerSummary, error)
}

// PurchaseModel is a fitted frequency/recency model
type PurchaseModel interface {
	// ExpectedPurchases returns the expected number of purchases in (T, T+t] for the customer
	ExpectedPurchases(t float64, c CustomerSummary) float64
}

// MonetaryModel is a fitted spend-per-transaction model
type MonetaryModel interface {
	// ExpectedAverageValue returns the expected average transaction value of the customer
	ExpectedAverageValue(c CustomerSummary) float64
}

// Ranker orders scored customers (S4)
// ⭐ SSOT: S4 순위 인터페이스
type Ranker interface {
	Rank(ctx context.Context, scored []ScoredCustomer, n int) ([]ScoredCustomer, error)
}
