package pricing

import (
	"testing"
	"time"

	"shuttlesync/internal/domain/discount"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sampleLines() []ServiceLine {
	return []ServiceLine{
		{ServiceID: "shuttle", Name: "Shuttlecock tube", Quantity: 2, UnitPrice: d(15000)},
		{ServiceID: "racket", Name: "Racket rental", Quantity: 1, UnitPrice: d(30000)},
	}
}

func TestComputeSubtotal(t *testing.T) {
	assert.True(t, d(260000).Equal(ComputeSubtotal(d(200000), sampleLines())))
	assert.True(t, d(200000).Equal(ComputeSubtotal(d(200000), nil)))
	assert.True(t, d(0).Equal(ComputeSubtotal(d(0), nil)))

	lines := append(sampleLines(), ServiceLine{ServiceID: "water", Quantity: 0, UnitPrice: d(10000)})
	assert.True(t, d(260000).Equal(ComputeSubtotal(d(200000), lines)), "zero-quantity lines contribute nothing")
}

func TestSetQuantity(t *testing.T) {
	t.Run("zero removes the line", func(t *testing.T) {
		lines := sampleLines()
		before := ComputeSubtotal(d(200000), lines)

		out, err := SetQuantity(lines, "shuttle", 0)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "racket", out[0].ServiceID)

		after := ComputeSubtotal(d(200000), out)
		assert.True(t, before.Sub(d(30000)).Equal(after))
		assert.Len(t, lines, 2, "input must not change")
	})

	t.Run("negative removes the line", func(t *testing.T) {
		out, err := SetQuantity(sampleLines(), "racket", -3)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "shuttle", out[0].ServiceID)
	})

	t.Run("update keeps order and price", func(t *testing.T) {
		out, err := SetQuantity(sampleLines(), "shuttle", 5)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, 5, out[0].Quantity)
		assert.True(t, d(15000).Equal(out[0].UnitPrice))
	})

	t.Run("unknown service", func(t *testing.T) {
		_, err := SetQuantity(sampleLines(), "towel", 1)
		assert.ErrorIs(t, err, ErrUnknownLine)
	})

	t.Run("removing an unknown service is a no-op", func(t *testing.T) {
		out, err := SetQuantity(sampleLines(), "towel", 0)
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})
}

func TestAddService(t *testing.T) {
	water := CatalogItem{ServiceID: "water", Name: "Water", UnitPrice: d(10000)}

	out, err := AddService(sampleLines(), water, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, d(30000).Equal(out[2].Total()))

	out, err = AddService(out, CatalogItem{ServiceID: "shuttle", UnitPrice: d(99999)}, 1)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 3, out[0].Quantity)
	assert.True(t, d(15000).Equal(out[0].UnitPrice), "existing line keeps its price")

	_, err = AddService(out, water, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestQuote(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
	v := &discount.Voucher{
		Code:           "WEEKEND",
		Type:           discount.TypeFixed,
		Value:          d(50000),
		MinOrderAmount: d(250000),
		Status:         discount.StatusActive,
	}

	q, err := Quote(d(200000), sampleLines(), v, now, loc)
	require.NoError(t, err)
	assert.True(t, d(260000).Equal(q.OriginalAmount))
	assert.True(t, d(210000).Equal(q.FinalAmount))

	// dropping the racket takes the order under the minimum
	lines, err := SetQuantity(sampleLines(), "racket", 0)
	require.NoError(t, err)
	q, err = Quote(d(200000), lines, v, now, loc)
	require.ErrorIs(t, err, discount.ErrVoucherIneligible)
	assert.True(t, d(230000).Equal(q.FinalAmount))
	assert.True(t, q.DiscountAmount.IsZero())
}
