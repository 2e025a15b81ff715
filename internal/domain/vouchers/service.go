// Package vouchers finds vouchers by code or free text and previews what
// they would be worth on a given order.
package vouchers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/external"

	"github.com/shopspring/decimal"
)

var ErrVouchersUnavailable = errors.New("voucher service unavailable")

type Backend interface {
	SearchVouchers(ctx context.Context, query string) ([]external.Voucher, error)
}

type Cache interface {
	GetVoucher(ctx context.Context, code string) (*discount.Voucher, error)
	SetVoucher(ctx context.Context, v *discount.Voucher, ttl time.Duration) error
}

type ServiceInterface interface {
	Lookup(ctx context.Context, code string) (*discount.Voucher, error)
	Search(ctx context.Context, query string) ([]*discount.Voucher, error)
	Preview(ctx context.Context, query string, subtotal decimal.Decimal) ([]Preview, error)
}

type Service struct {
	backend  Backend
	cache    Cache
	cacheTTL time.Duration
	loc      *time.Location
	now      func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

func NewService(backend Backend, cache Cache, cacheTTL time.Duration, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		backend:  backend,
		cache:    cache,
		cacheTTL: cacheTTL,
		loc:      loc,
		now:      time.Now,
	}
}

// Lookup resolves a user-entered code. Unknown codes yield a not-found
// Rejection.
func (s *Service) Lookup(ctx context.Context, code string) (*discount.Voucher, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, discount.NotFound(code)
	}

	if s.cache != nil {
		if cached, err := s.cache.GetVoucher(ctx, code); err == nil && cached != nil {
			return cached, nil
		}
	}

	found, err := s.backend.SearchVouchers(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVouchersUnavailable, err)
	}
	for _, f := range found {
		v := f.Domain()
		if !v.SameCode(code) {
			continue
		}
		if s.cache != nil && s.cacheTTL > 0 {
			_ = s.cache.SetVoucher(ctx, v, s.cacheTTL)
		}
		return v, nil
	}
	return nil, discount.NotFound(code)
}

func (s *Service) Search(ctx context.Context, query string) ([]*discount.Voucher, error) {
	found, err := s.backend.SearchVouchers(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVouchersUnavailable, err)
	}
	out := make([]*discount.Voucher, 0, len(found))
	for _, f := range found {
		out = append(out, f.Domain())
	}
	return out, nil
}

// Preview is one search result evaluated against an order subtotal.
type Preview struct {
	Voucher   *discount.Voucher
	Eligible  bool
	Discount  decimal.Decimal
	Rejection *discount.Rejection
}

// Preview lists vouchers matching query with what each would take off
// subtotal. Usable vouchers come first, biggest discount first.
func (s *Service) Preview(ctx context.Context, query string, subtotal decimal.Decimal) ([]Preview, error) {
	found, err := s.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Preview, 0, len(found))
	for _, v := range found {
		q, err := discount.Apply(subtotal, v, now, s.loc)
		p := Preview{Voucher: v, Eligible: err == nil, Discount: q.DiscountAmount}
		if rej, ok := discount.AsRejection(err); ok {
			p.Rejection = rej
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Eligible != out[j].Eligible {
			return out[i].Eligible
		}
		if c := out[i].Discount.Cmp(out[j].Discount); c != 0 {
			return c > 0
		}
		return out[i].Voucher.Code < out[j].Voucher.Code
	})
	return out, nil
}
