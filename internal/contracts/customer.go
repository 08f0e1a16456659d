package contracts

import (
	"strconv"
	"time"
)

// ObservationEnd is the fixed observation cutoff of the transaction log
var ObservationEnd = time.Date(2011, time.December, 9, 0, 0, 0, 0, time.UTC)

// Model horizons
const (
	PurchaseHorizonDays = 10   // expected purchases over the next 10 days
	CLVPeriods          = 12   // months
	CLVPeriodDays       = 30   // days per CLV period
	CLVDiscountRate     = 0.01 // monthly discount rate (~12.7% annually)
	TopCustomers        = 10
)

// CustomerSummary is the behavioural summary of one customer
// ⭐ SSOT: S2 → S3 전달 타입
type CustomerSummary struct {
	CustomerID    string  `json:"customer_id" yaml:"customer_id"`
	Frequency     int     `json:"frequency" yaml:"frequency"`           // repeat purchase days
	Recency       float64 `json:"recency" yaml:"recency"`               // days between first and last purchase
	T             float64 `json:"T" yaml:"T"`                           // days between first purchase and ObservationEnd
	MonetaryValue float64 `json:"monetary_value" yaml:"monetary_value"` // mean spend per repeat purchase day, 0 without repeats
}

// IsRepeat reports whether the customer bought on more than one day
func (c CustomerSummary) IsRepeat() bool {
	return c.Frequency > 0
}

// ScoredCustomer extends a summary with model outputs
// ⭐ SSOT: S3 → S4 전달 타입
type ScoredCustomer struct {
	CustomerSummary `yaml:",inline"`
	PredictedPurchases float64 `json:"pred_num_txn" yaml:"pred_num_txn"`
	PredictedAvgValue  float64 `json:"pred_txn_value" yaml:"pred_txn_value"`
	CLV                float64 `json:"clv" yaml:"clv"`
	ProbabilityAlive   float64 `json:"prob_alive" yaml:"prob_alive"`
	Rank               int     `json:"rank,omitempty" yaml:"rank,omitempty"`
}

// CompareCustomerIDs orders ids numerically when both are integers, lexicographically otherwise
func CompareCustomerIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
