// Package pricing builds an order subtotal from a court slot and the extra
// services (shuttlecocks, rackets, drinks) picked for it.
package pricing

import (
	"errors"
	"time"

	"shuttlesync/internal/domain/discount"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownLine     = errors.New("service is not on the order")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type ServiceLine struct {
	ServiceID string          `json:"service_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l ServiceLine) Total() decimal.Decimal {
	if l.Quantity <= 0 {
		return decimal.Zero
	}
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CatalogItem is a service as offered by the facility. Its price is copied
// into the line when the service is picked.
type CatalogItem struct {
	ServiceID string
	Name      string
	UnitPrice decimal.Decimal
}

// ComputeSubtotal is the court price plus every line's quantity × unit price.
func ComputeSubtotal(courtPrice decimal.Decimal, lines []ServiceLine) decimal.Decimal {
	subtotal := courtPrice
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	if subtotal.IsNegative() {
		return decimal.Zero
	}
	return subtotal
}

// SetQuantity returns lines with serviceID set to qty. A quantity of zero or
// less removes the line; orders never keep zero-quantity lines. The input
// slice is not modified.
func SetQuantity(lines []ServiceLine, serviceID string, qty int) ([]ServiceLine, error) {
	out := make([]ServiceLine, 0, len(lines))
	found := false
	for _, l := range lines {
		if l.ServiceID != serviceID {
			out = append(out, l)
			continue
		}
		found = true
		if qty > 0 {
			l.Quantity = qty
			out = append(out, l)
		}
	}
	if !found && qty > 0 {
		return nil, ErrUnknownLine
	}
	return out, nil
}

// AddService adds qty of item to lines, merging into an existing line for the
// same service. The existing line keeps the price it was picked at.
func AddService(lines []ServiceLine, item CatalogItem, qty int) ([]ServiceLine, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	out := make([]ServiceLine, len(lines), len(lines)+1)
	copy(out, lines)
	for i := range out {
		if out[i].ServiceID == item.ServiceID {
			out[i].Quantity += qty
			return out, nil
		}
	}
	return append(out, ServiceLine{
		ServiceID: item.ServiceID,
		Name:      item.Name,
		Quantity:  qty,
		UnitPrice: item.UnitPrice,
	}), nil
}

// Quote prices a whole order: subtotal first, then the voucher, if any.
func Quote(courtPrice decimal.Decimal, lines []ServiceLine, v *discount.Voucher, now time.Time, loc *time.Location) (discount.Quote, error) {
	return discount.Apply(ComputeSubtotal(courtPrice, lines), v, now, loc)
}
