package s3_model

import (
	"math"

	"github.com/wonny/clv/internal/contracts"
)

// CLVHorizon discounting parameters of the lifetime value projection
type CLVHorizon struct {
	Periods      int     // number of periods (months)
	PeriodDays   float64 // days per period
	DiscountRate float64 // per period
}

// DefaultCLVHorizon 12 periods × 30 days, 1% per period
func DefaultCLVHorizon() CLVHorizon {
	return CLVHorizon{
		Periods:      contracts.CLVPeriods,
		PeriodDays:   contracts.CLVPeriodDays,
		DiscountRate: contracts.CLVDiscountRate,
	}
}

// CustomerLifetimeValue discounted expected spend over the horizon
// CLV = Σ_{i=1..n} value · (E[X(i·d)] - E[X((i-1)·d)]) / (1+rate)^i
func CustomerLifetimeValue(purchases contracts.PurchaseModel, avgValue float64, c contracts.CustomerSummary, h CLVHorizon) float64 {
	var clv, prev float64
	for i := 1; i <= h.Periods; i++ {
		expected := purchases.ExpectedPurchases(float64(i)*h.PeriodDays, c)
		clv += avgValue * (expected - prev) / math.Pow(1+h.DiscountRate, float64(i))
		prev = expected
	}
	return clv
}
