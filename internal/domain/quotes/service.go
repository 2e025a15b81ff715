// Package quotes prices an order that is not stored anywhere, for portals
// that want totals before a draft exists.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

var ErrInvalidRequest = errors.New("invalid quote request")

type Catalog interface {
	Get(ctx context.Context, serviceID string) (pricing.CatalogItem, error)
}

type VoucherLookup interface {
	Lookup(ctx context.Context, code string) (*discount.Voucher, error)
}

type ServiceInterface interface {
	Quote(ctx context.Context, req *Request) (*Result, error)
}

type Service struct {
	catalog  Catalog
	vouchers VoucherLookup
	loc      *time.Location
	now      func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

func NewService(catalog Catalog, vouchers VoucherLookup, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		catalog:  catalog,
		vouchers: vouchers,
		loc:      loc,
		now:      time.Now,
	}
}

type LineInput struct {
	ServiceID string
	Quantity  int
	// nil means the catalog price
	UnitPrice *decimal.Decimal
}

type Request struct {
	CourtPrice  decimal.Decimal
	Lines       []LineInput
	VoucherCode string
}

// Result always carries a quote. Rejection is set when the voucher did not
// apply, in which case the quote is undiscounted.
type Result struct {
	Lines     []pricing.ServiceLine
	Quote     discount.Quote
	Rejection *discount.Rejection
}

func (s *Service) Quote(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	if req.CourtPrice.IsNegative() {
		return nil, fmt.Errorf("%w: court_price must not be negative", ErrInvalidRequest)
	}

	var lines []pricing.ServiceLine
	for _, in := range req.Lines {
		if in.Quantity < 1 {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, pricing.ErrInvalidQuantity)
		}
		item, err := s.catalog.Get(ctx, in.ServiceID)
		if err != nil {
			return nil, err
		}
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		lines, err = pricing.AddService(lines, item, in.Quantity)
		if err != nil {
			return nil, err
		}
	}

	out := &Result{Lines: lines}
	if lines == nil {
		out.Lines = []pricing.ServiceLine{}
	}

	var v *discount.Voucher
	if code := strings.TrimSpace(req.VoucherCode); code != "" {
		found, err := s.vouchers.Lookup(ctx, code)
		if rej, ok := discount.AsRejection(err); ok {
			out.Rejection = rej
		} else if err != nil {
			return nil, err
		} else {
			v = found
		}
	}

	q, err := pricing.Quote(req.CourtPrice, lines, v, s.now(), s.loc)
	if rej, ok := discount.AsRejection(err); ok {
		out.Rejection = rej
	} else if err != nil {
		return nil, err
	}
	out.Quote = q
	return out, nil
}
