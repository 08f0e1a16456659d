package s1_prepare

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

func raw(line int, customer, qty, date, price string) contracts.RawTransaction {
	return contracts.RawTransaction{Line: line, CustomerID: customer, Quantity: qty, InvoiceDate: date, UnitPrice: price}
}

func TestPrepare_FiltersAndComputesTotal(t *testing.T) {
	p := NewPreprocessor(logger.Nop())

	rows := []contracts.RawTransaction{
		raw(1, "17850", "6", "12/1/2010 8:26", "2.55"),
		raw(2, "", "6", "12/1/2010 8:28", "1.85"),       // anonymous
		raw(3, "17850", "-1", "12/2/2010 9:00", "2.55"), // return
		raw(4, "17850", "0", "12/2/2010 9:00", "2.55"),
		raw(5, "13047.0", "2", "12/13/2011 17:59", "10"),
	}

	txs, stats, err := p.PrepareWithStats(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "17850", txs[0].CustomerID)
	assert.Equal(t, time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC), txs[0].InvoiceDate)
	assert.Equal(t, 6, txs[0].Quantity)
	assert.InDelta(t, 15.30, txs[0].TotalValue, 1e-9)

	assert.Equal(t, "13047", txs[1].CustomerID)
	assert.InDelta(t, 20.0, txs[1].TotalValue, 1e-9)

	assert.Equal(t, Stats{Input: 5, DroppedNoCustomer: 1, DroppedNonPositive: 2, Output: 2}, stats)
}

func TestPrepare_EveryOutputHasCustomerAndPositiveQuantity(t *testing.T) {
	p := NewPreprocessor(logger.Nop())

	rows := []contracts.RawTransaction{
		raw(1, " ", "3", "1/4/2011 10:00", "1.00"),
		raw(2, "12346", "74215", "1/18/2011 10:01", "1.04"),
		raw(3, "12346", "-74215", "1/18/2011 10:17", "1.04"),
		raw(4, "12347", "12", "12/7/2010 14:57", "0"),
	}

	txs, err := p.Prepare(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.NotEmpty(t, tx.CustomerID)
		assert.Positive(t, tx.Quantity)
		assert.InDelta(t, float64(tx.Quantity)*tx.UnitPrice, tx.TotalValue, 1e-9)
	}
}

func TestPrepare_DropsAnonymousBeforeQuantityCheck(t *testing.T) {
	p := NewPreprocessor(logger.Nop())

	// an anonymous row is dropped even if its quantity is garbage
	rows := []contracts.RawTransaction{raw(1, "", "abc", "1/4/2011 10:00", "x")}

	txs, stats, err := p.PrepareWithStats(context.Background(), rows)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Equal(t, 1, stats.DroppedNoCustomer)
}

func TestPrepare_ParseErrors(t *testing.T) {
	p := NewPreprocessor(logger.Nop())

	tests := []struct {
		name  string
		row   contracts.RawTransaction
		field string
	}{
		{"bad date", raw(7, "12346", "1", "2011-01-04", "1.00"), contracts.ColumnInvoiceDate},
		{"bad date on anonymous row", raw(7, "", "1", "not a date", "1.00"), contracts.ColumnInvoiceDate},
		{"bad quantity", raw(7, "12346", "1.5", "1/4/2011 10:00", "1.00"), contracts.ColumnQuantity},
		{"empty price", raw(7, "12346", "1", "1/4/2011 10:00", ""), contracts.ColumnUnitPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Prepare(context.Background(), []contracts.RawTransaction{tt.row})
			require.Error(t, err)
			assert.ErrorIs(t, err, contracts.ErrParse)

			var perr *contracts.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 7, perr.Line)
			assert.Equal(t, tt.field, perr.Field)
		})
	}
}

func TestPrepare_CancelledContext(t *testing.T) {
	p := NewPreprocessor(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Prepare(ctx, []contracts.RawTransaction{raw(1, "1", "1", "1/4/2011 10:00", "1")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseInvoiceDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"12/1/2010 8:26", time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"12/09/2011 12:50", time.Date(2011, 12, 9, 0, 0, 0, 0, time.UTC)},
		{" 1/4/2011 23:59 ", time.Date(2011, 1, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseInvoiceDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseInvoiceDate("13/1/2010 8:26")
	assert.Error(t, err)
}

func TestNormalizeCustomerID(t *testing.T) {
	assert.Equal(t, "17850", NormalizeCustomerID("17850.0"))
	assert.Equal(t, "17850", NormalizeCustomerID(" 17850 "))
	assert.Equal(t, "A.0", NormalizeCustomerID("A.0"))
	assert.Equal(t, "", NormalizeCustomerID("  "))
	assert.Equal(t, ".0", NormalizeCustomerID(".0"))
}
