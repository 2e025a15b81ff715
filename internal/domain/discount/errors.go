package discount

import (
	"errors"
	"fmt"

	"shuttlesync/internal/format"

	"github.com/shopspring/decimal"
)

var (
	// subtotal below the voucher minimum, or a voucher type we cannot price
	ErrVoucherIneligible = errors.New("voucher ineligible")
	// outside the validity window or not active
	ErrVoucherExpired = errors.New("voucher expired")
	// lookup found nothing for the entered code
	ErrVoucherNotFound = errors.New("voucher not found")
)

// Rejection explains why a voucher was not applied. It unwraps to one of the
// Err* sentinels above.
type Rejection struct {
	Kind   error
	Code   string
	Reason string
	// Set for minimum-order rejections: how much more the order needs.
	Shortfall decimal.Decimal
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.Kind
}

// Slug is the stable machine-readable name of the rejection kind.
func (r *Rejection) Slug() string {
	switch {
	case errors.Is(r.Kind, ErrVoucherNotFound):
		return "not_found"
	case errors.Is(r.Kind, ErrVoucherExpired):
		return "expired"
	default:
		return "ineligible"
	}
}

// AsRejection extracts a Rejection from err, if there is one.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

func NotFound(code string) *Rejection {
	return &Rejection{
		Kind:   ErrVoucherNotFound,
		Code:   code,
		Reason: fmt.Sprintf("voucher %q not found", code),
	}
}

func expired(code, reason string) *Rejection {
	return &Rejection{Kind: ErrVoucherExpired, Code: code, Reason: reason}
}

func belowMinimum(code string, subtotal, minimum decimal.Decimal) *Rejection {
	shortfall := minimum.Sub(subtotal)
	return &Rejection{
		Kind: ErrVoucherIneligible,
		Code: code,
		Reason: fmt.Sprintf("order total %s is below the minimum %s, add %s more to use this voucher",
			format.VND(subtotal), format.VND(minimum), format.VND(shortfall)),
		Shortfall: shortfall,
	}
}
