package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hcm = time.FixedZone("ICT", 7*3600)
	now = time.Date(2025, 3, 15, 10, 0, 0, 0, hcm)
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

func percent(value int64, maxDiscount *decimal.Decimal) *Voucher {
	return &Voucher{
		Code:              "SALE",
		Type:              TypePercentage,
		Value:             d(value),
		MaxDiscountAmount: maxDiscount,
		Status:            StatusActive,
	}
}

func fixed(value int64) *Voucher {
	return &Voucher{Code: "FLAT", Type: TypeFixed, Value: d(value), Status: StatusActive}
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal decimal.Decimal
		voucher  *Voucher
		want     decimal.Decimal
	}{
		{"no voucher", d(500000), nil, d(0)},
		{"percentage under cap", d(200000), percent(10, ptr(d(50000))), d(20000)},
		{"percentage capped", d(1000000), percent(10, ptr(d(50000))), d(50000)},
		{"percentage at cap", d(500000), percent(10, ptr(d(50000))), d(50000)},
		{"percentage without cap", d(1000000), percent(10, nil), d(100000)},
		{"percentage rounds down", d(99999), percent(15, nil), d(14999)},
		{"percentage over hundred clamps to subtotal", d(80000), percent(150, nil), d(80000)},
		{"negative percentage gives nothing", d(80000), percent(-5, nil), d(0)},
		{"fixed under subtotal", d(300000), fixed(50000), d(50000)},
		{"fixed clamps to subtotal", d(30000), fixed(50000), d(30000)},
		{"fixed keeps fractional value", d(100000), &Voucher{Type: TypeFixed, Value: decimal.RequireFromString("50000.5")}, decimal.RequireFromString("50000.5")},
		{"fixed ignores cap", d(300000), &Voucher{Type: TypeFixed, Value: d(80000), MaxDiscountAmount: ptr(d(10000))}, d(80000)},
		{"negative fixed gives nothing", d(30000), fixed(-1000), d(0)},
		{"unknown type gives nothing", d(30000), &Voucher{Type: "BOGO", Value: d(10)}, d(0)},
		{"zero subtotal", d(0), fixed(50000), d(0)},
		{"negative subtotal treated as zero", d(-1000), fixed(50000), d(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDiscount(tt.subtotal, tt.voucher)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestComputeDiscount_Bounds(t *testing.T) {
	vouchers := []*Voucher{
		nil,
		percent(0, nil),
		percent(10, ptr(d(50000))),
		percent(100, nil),
		percent(250, ptr(d(-10))),
		fixed(0),
		fixed(1),
		fixed(10_000_000),
		fixed(-500),
	}
	for _, subtotal := range []int64{0, 1, 999, 30000, 260000, 1000000, 123456789} {
		for _, v := range vouchers {
			s := d(subtotal)
			got := ComputeDiscount(s, v)
			require.False(t, got.IsNegative(), "subtotal %d voucher %+v", subtotal, v)
			require.True(t, got.LessThanOrEqual(s), "subtotal %d voucher %+v", subtotal, v)
			require.False(t, ComputeFinalAmount(s, got).IsNegative())
			require.True(t, got.Equal(ComputeDiscount(s, v)), "not repeatable")
		}
	}
}

func TestComputeFinalAmount(t *testing.T) {
	assert.True(t, d(210000).Equal(ComputeFinalAmount(d(260000), d(50000))))
	assert.True(t, d(0).Equal(ComputeFinalAmount(d(30000), d(30000))))
	assert.True(t, d(0).Equal(ComputeFinalAmount(d(30000), d(50000))))
}

func TestValidate(t *testing.T) {
	base := func() *Voucher {
		return &Voucher{
			Code:           "SUMMER",
			Type:           TypePercentage,
			Value:          d(10),
			MinOrderAmount: d(300000),
			ValidFrom:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:        time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			Status:         StatusActive,
		}
	}

	t.Run("eligible", func(t *testing.T) {
		assert.NoError(t, Validate(d(300000), base(), now, hcm))
	})

	t.Run("nil voucher", func(t *testing.T) {
		assert.NoError(t, Validate(d(0), nil, now, hcm))
	})

	t.Run("below minimum", func(t *testing.T) {
		err := Validate(d(200000), base(), now, hcm)
		require.ErrorIs(t, err, ErrVoucherIneligible)
		rej, ok := AsRejection(err)
		require.True(t, ok)
		assert.True(t, d(100000).Equal(rej.Shortfall))
		assert.Equal(t, "ineligible", rej.Slug())
		assert.Equal(t, "SUMMER", rej.Code)
		assert.Contains(t, rej.Reason, "100.000 ₫")
	})

	for _, status := range []VoucherStatus{StatusInactive, StatusExpired, ""} {
		t.Run("status "+string(status), func(t *testing.T) {
			v := base()
			v.Status = status
			err := Validate(d(500000), v, now, hcm)
			require.ErrorIs(t, err, ErrVoucherExpired)
			rej, _ := AsRejection(err)
			assert.Equal(t, "expired", rej.Slug())
		})
	}

	t.Run("last day is inclusive in local time", func(t *testing.T) {
		lateEvening := time.Date(2025, 3, 15, 23, 30, 0, 0, hcm)
		assert.NoError(t, Validate(d(500000), base(), lateEvening, hcm))
	})

	t.Run("after window", func(t *testing.T) {
		// 17:30 UTC on the 15th is already the 16th in Ho Chi Minh City
		at := time.Date(2025, 3, 15, 17, 30, 0, 0, time.UTC)
		assert.ErrorIs(t, Validate(d(500000), base(), at, hcm), ErrVoucherExpired)
	})

	t.Run("before window", func(t *testing.T) {
		at := time.Date(2025, 2, 28, 12, 0, 0, 0, hcm)
		assert.ErrorIs(t, Validate(d(500000), base(), at, hcm), ErrVoucherExpired)
	})

	t.Run("open window", func(t *testing.T) {
		v := base()
		v.ValidFrom, v.ValidTo = time.Time{}, time.Time{}
		assert.NoError(t, Validate(d(500000), v, now.AddDate(5, 0, 0), hcm))
	})

	t.Run("unknown type", func(t *testing.T) {
		v := base()
		v.Type = "BOGO"
		assert.ErrorIs(t, Validate(d(500000), v, now, hcm), ErrVoucherIneligible)
	})

	t.Run("small fixed value is not a percentage", func(t *testing.T) {
		v := base()
		v.Type = TypeFixed
		v.Value = d(50)
		require.NoError(t, Validate(d(500000), v, now, hcm))
		assert.True(t, d(50).Equal(ComputeDiscount(d(500000), v)))
	})
}

func TestApply(t *testing.T) {
	t.Run("applies capped percentage", func(t *testing.T) {
		q, err := Apply(d(1000000), percent(10, ptr(d(50000))), now, hcm)
		require.NoError(t, err)
		assert.True(t, d(1000000).Equal(q.OriginalAmount))
		assert.True(t, d(50000).Equal(q.DiscountAmount))
		assert.True(t, d(950000).Equal(q.FinalAmount))
		assert.Equal(t, "SALE", q.VoucherCode)
	})

	t.Run("rejected voucher leaves amount unchanged", func(t *testing.T) {
		v := fixed(50000)
		v.MinOrderAmount = d(300000)
		q, err := Apply(d(200000), v, now, hcm)
		require.ErrorIs(t, err, ErrVoucherIneligible)
		assert.True(t, d(200000).Equal(q.OriginalAmount))
		assert.True(t, q.DiscountAmount.IsZero())
		assert.True(t, d(200000).Equal(q.FinalAmount))
		assert.Empty(t, q.VoucherCode)
	})

	t.Run("no voucher", func(t *testing.T) {
		q, err := Apply(d(260000), nil, now, hcm)
		require.NoError(t, err)
		assert.True(t, q.FinalAmount.Equal(q.OriginalAmount))
	})

	t.Run("does not touch usage counters", func(t *testing.T) {
		v := fixed(1000)
		v.UsageLimit, v.UsedCount = 10, 3
		_, err := Apply(d(5000), v, now, hcm)
		require.NoError(t, err)
		assert.Equal(t, 3, v.UsedCount)
	})
}

func TestNotFound(t *testing.T) {
	err := error(NotFound("nope"))
	assert.ErrorIs(t, err, ErrVoucherNotFound)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "not_found", rej.Slug())
}

func TestSameCode(t *testing.T) {
	v := &Voucher{Code: "Summer25"}
	assert.True(t, v.SameCode(" summer25 "))
	assert.False(t, v.SameCode("summer26"))
	assert.Equal(t, "SUMMER25", NormalizeCode(" summer25"))
}
