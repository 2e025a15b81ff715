package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shuttlesync/internal/domain/discount"

	"github.com/shopspring/decimal"
)

func TestSearchVouchers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/customer/vouchers/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "summer 25" {
			t.Errorf("expected query %q, got %q", "summer 25", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"code": "SUMMER25", "type": "PERCENTAGE", "value": 10,
			"minOrderAmount": "300000", "maxDiscountAmount": 50000,
			"validFrom": "2025-06-01", "validTo": "2025-08-31T00:00:00",
			"status": "active", "usageLimit": 100, "usedCount": 7
		}, {
			"code": "FLAT20", "type": "FIXED", "value": 20000,
			"minOrderAmount": 0, "maxDiscountAmount": null,
			"validFrom": null, "validTo": null, "status": "inactive"
		}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	vs, err := c.SearchVouchers(context.Background(), "summer 25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vs) != 2 {
		t.Fatalf("expected 2 vouchers, got %d", len(vs))
	}

	v := vs[0].Domain()
	if v.Type != discount.TypePercentage || !v.Value.Equal(decimal.NewFromInt(10)) {
		t.Errorf("unexpected voucher %+v", v)
	}
	if v.MaxDiscountAmount == nil || !v.MaxDiscountAmount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected cap 50000, got %v", v.MaxDiscountAmount)
	}
	if v.ValidTo.Format(time.DateOnly) != "2025-08-31" {
		t.Errorf("unexpected validTo %v", v.ValidTo)
	}

	flat := vs[1].Domain()
	if flat.MaxDiscountAmount != nil || !flat.ValidFrom.IsZero() {
		t.Errorf("expected open voucher, got %+v", flat)
	}
}

func TestCreateBooking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/customer/bookings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Reference != "bk-1" || len(req.ServiceLines) != 1 {
			t.Errorf("unexpected booking request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(BookingInvoice{
			InvoiceID:      "inv-1",
			BookingID:      "42",
			OriginalAmount: req.CourtPrice,
			DiscountAmount: req.DiscountAmount,
			FinalAmount:    req.FinalAmount,
			Status:         "PENDING",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	inv, err := c.CreateBooking(context.Background(), &BookingRequest{
		Reference:   "bk-1",
		CourtPrice:  decimal.NewFromInt(200000),
		FinalAmount: decimal.NewFromInt(200000),
		ServiceLines: []BookingLine{
			{ServiceID: "shuttle", Quantity: 2, UnitPrice: decimal.NewFromInt(15000)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.InvoiceID != "inv-1" || inv.Status != "PENDING" {
		t.Errorf("unexpected invoice %+v", inv)
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusBadGateway, ErrUnavailable},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))
		c := NewClient(srv.URL, time.Second)
		_, err := c.GetSlotPrice(context.Background(), "court-1", time.Now(), time.Now().Add(time.Hour))
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
		srv.Close()
	}
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	if _, err := c.ListServices(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
