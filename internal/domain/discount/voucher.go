package discount

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type VoucherType string

const (
	TypePercentage VoucherType = "PERCENTAGE"
	TypeFixed      VoucherType = "FIXED"
)

func (t VoucherType) Valid() bool {
	return t == TypePercentage || t == TypeFixed
}

type VoucherStatus string

const (
	StatusActive   VoucherStatus = "active"
	StatusInactive VoucherStatus = "inactive"
	StatusExpired  VoucherStatus = "expired"
)

// Voucher is reference data administered by the backend. The engine only
// reads it; UsageLimit and UsedCount are carried for display.
type Voucher struct {
	Code           string
	Type           VoucherType
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	// nil means no cap. Only PERCENTAGE vouchers are capped.
	MaxDiscountAmount *decimal.Decimal
	// Calendar dates, inclusive. The zero value leaves that side open.
	ValidFrom time.Time
	ValidTo   time.Time
	Status    VoucherStatus

	UsageLimit int
	UsedCount  int
}

// SameCode reports whether code refers to this voucher. Codes are matched
// case-insensitively and ignoring surrounding blanks.
func (v *Voucher) SameCode(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), strings.TrimSpace(v.Code))
}

// NormalizeCode is the canonical form used for cache keys and comparisons.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Quote is the outcome of pricing one order.
type Quote struct {
	OriginalAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	// Empty when no voucher was applied.
	VoucherCode string
}
