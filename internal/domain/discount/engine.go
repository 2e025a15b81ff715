// Package discount prices an order subtotal against at most one voucher.
// Everything here is a pure function of its arguments.
package discount

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ComputeDiscount returns the discount v grants on subtotal, always within
// [0, subtotal]. Percentage discounts are rounded down to whole currency
// units; fixed amounts are taken as given. A nil voucher
// grants nothing. Eligibility is not checked here; see Validate.
func ComputeDiscount(subtotal decimal.Decimal, v *Voucher) decimal.Decimal {
	subtotal = nonNegative(subtotal)
	if v == nil {
		return decimal.Zero
	}

	var raw decimal.Decimal
	switch v.Type {
	case TypePercentage:
		raw = subtotal.Mul(v.Value).Div(decimal.NewFromInt(100)).Floor()
		if v.MaxDiscountAmount != nil && raw.GreaterThan(*v.MaxDiscountAmount) {
			raw = *v.MaxDiscountAmount
		}
	case TypeFixed:
		raw = v.Value
	default:
		return decimal.Zero
	}

	return decimal.Min(nonNegative(raw), subtotal)
}

// ComputeFinalAmount is subtotal minus discount, never below zero.
func ComputeFinalAmount(subtotal, discount decimal.Decimal) decimal.Decimal {
	return nonNegative(subtotal.Sub(discount))
}

// Validate checks that v may be used for an order of subtotal placed at now.
// The validity window is compared by calendar date in loc. It returns a
// *Rejection or nil.
func Validate(subtotal decimal.Decimal, v *Voucher, now time.Time, loc *time.Location) error {
	if v == nil {
		return nil
	}
	if v.Status != StatusActive {
		return expired(v.Code, fmt.Sprintf("voucher %s is %s", v.Code, statusText(v.Status)))
	}

	if loc == nil {
		loc = time.UTC
	}
	today := dateOf(now.In(loc))
	if !v.ValidFrom.IsZero() && today < dateOf(v.ValidFrom) {
		return expired(v.Code, fmt.Sprintf("voucher %s is valid from %s", v.Code, v.ValidFrom.Format(time.DateOnly)))
	}
	if !v.ValidTo.IsZero() && today > dateOf(v.ValidTo) {
		return expired(v.Code, fmt.Sprintf("voucher %s expired on %s", v.Code, v.ValidTo.Format(time.DateOnly)))
	}

	if !v.Type.Valid() {
		return &Rejection{
			Kind:   ErrVoucherIneligible,
			Code:   v.Code,
			Reason: fmt.Sprintf("voucher %s has unsupported type %q", v.Code, v.Type),
		}
	}

	if nonNegative(subtotal).LessThan(v.MinOrderAmount) {
		return belowMinimum(v.Code, nonNegative(subtotal), v.MinOrderAmount)
	}
	return nil
}

// Apply validates v and prices subtotal with it. When v is rejected the quote
// carries the original amount unchanged and the rejection is returned with it.
func Apply(subtotal decimal.Decimal, v *Voucher, now time.Time, loc *time.Location) (Quote, error) {
	original := nonNegative(subtotal)
	q := Quote{
		OriginalAmount: original,
		DiscountAmount: decimal.Zero,
		FinalAmount:    original,
	}
	if v == nil {
		return q, nil
	}
	if err := Validate(original, v, now, loc); err != nil {
		return q, err
	}

	q.DiscountAmount = ComputeDiscount(original, v)
	q.FinalAmount = ComputeFinalAmount(original, q.DiscountAmount)
	q.VoucherCode = v.Code
	return q, nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// dateOf maps t to yyyymmdd using t's own location.
func dateOf(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func statusText(s VoucherStatus) string {
	if s == "" {
		return "not active"
	}
	return string(s)
}
