package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"shuttlesync/internal/domain/catalog"
	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	items map[string]pricing.CatalogItem
}

func (m *mockCatalog) Get(ctx context.Context, serviceID string) (pricing.CatalogItem, error) {
	item, ok := m.items[serviceID]
	if !ok {
		return pricing.CatalogItem{}, catalog.ErrServiceNotFound
	}
	return item, nil
}

type mockVouchers struct {
	lookupFunc func(ctx context.Context, code string) (*discount.Voucher, error)
}

func (m *mockVouchers) Lookup(ctx context.Context, code string) (*discount.Voucher, error) {
	return m.lookupFunc(ctx, code)
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newTestService(v *discount.Voucher) *Service {
	cat := &mockCatalog{items: map[string]pricing.CatalogItem{
		"water":  {ServiceID: "water", Name: "Water", UnitPrice: d(10000)},
		"racket": {ServiceID: "racket", Name: "Racket rental", UnitPrice: d(50000)},
	}}
	vouchers := &mockVouchers{lookupFunc: func(ctx context.Context, code string) (*discount.Voucher, error) {
		if v != nil && v.SameCode(code) {
			return v, nil
		}
		return nil, discount.NotFound(code)
	}}
	s := NewService(cat, vouchers, time.UTC)
	s.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestQuote_WithVoucher(t *testing.T) {
	v := &discount.Voucher{
		Code: "SUMMER10", Type: discount.TypePercentage, Value: d(10),
		MinOrderAmount: d(100000), Status: discount.StatusActive,
	}
	s := newTestService(v)

	res, err := s.Quote(context.Background(), &Request{
		CourtPrice: d(200000),
		Lines: []LineInput{
			{ServiceID: "water", Quantity: 2},
			{ServiceID: "racket", Quantity: 1},
		},
		VoucherCode: "summer10",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Rejection)
	assert.Len(t, res.Lines, 2)
	assert.True(t, res.Quote.OriginalAmount.Equal(d(270000)))
	assert.True(t, res.Quote.DiscountAmount.Equal(d(27000)))
	assert.True(t, res.Quote.FinalAmount.Equal(d(243000)))
	assert.Equal(t, "SUMMER10", res.Quote.VoucherCode)
}

func TestQuote_PriceOverride(t *testing.T) {
	s := newTestService(nil)
	price := d(8000)

	res, err := s.Quote(context.Background(), &Request{
		CourtPrice: d(100000),
		Lines:      []LineInput{{ServiceID: "water", Quantity: 3, UnitPrice: &price}},
	})
	require.NoError(t, err)
	assert.True(t, res.Quote.FinalAmount.Equal(d(124000)))
}

func TestQuote_UnknownVoucherKeepsQuote(t *testing.T) {
	s := newTestService(nil)

	res, err := s.Quote(context.Background(), &Request{CourtPrice: d(150000), VoucherCode: "NOPE"})
	require.NoError(t, err)
	require.NotNil(t, res.Rejection)
	assert.ErrorIs(t, res.Rejection, discount.ErrVoucherNotFound)
	assert.True(t, res.Quote.FinalAmount.Equal(d(150000)))
	assert.True(t, res.Quote.DiscountAmount.IsZero())
	assert.Empty(t, res.Lines)
}

func TestQuote_BelowMinimum(t *testing.T) {
	v := &discount.Voucher{
		Code: "BIG", Type: discount.TypeFixed, Value: d(50000),
		MinOrderAmount: d(300000), Status: discount.StatusActive,
	}
	s := newTestService(v)

	res, err := s.Quote(context.Background(), &Request{CourtPrice: d(200000), VoucherCode: "BIG"})
	require.NoError(t, err)
	require.NotNil(t, res.Rejection)
	assert.ErrorIs(t, res.Rejection, discount.ErrVoucherIneligible)
	assert.True(t, res.Rejection.Shortfall.Equal(d(100000)))
	assert.True(t, res.Quote.FinalAmount.Equal(d(200000)))
}

func TestQuote_Errors(t *testing.T) {
	s := newTestService(nil)

	_, err := s.Quote(context.Background(), &Request{CourtPrice: d(-1)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = s.Quote(context.Background(), &Request{
		CourtPrice: d(1000),
		Lines:      []LineInput{{ServiceID: "water", Quantity: 0}},
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidQuantity)

	_, err = s.Quote(context.Background(), &Request{
		CourtPrice: d(1000),
		Lines:      []LineInput{{ServiceID: "towel", Quantity: 1}},
	})
	assert.ErrorIs(t, err, catalog.ErrServiceNotFound)

	failing := newTestService(nil)
	failing.vouchers = &mockVouchers{lookupFunc: func(ctx context.Context, code string) (*discount.Voucher, error) {
		return nil, errors.New("backend down")
	}}
	_, err = failing.Quote(context.Background(), &Request{CourtPrice: d(1000), VoucherCode: "X"})
	assert.Error(t, err)
}
