package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"shuttlesync/internal/external"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func newTestBackend(t *testing.T) (*external.Client, *Storage) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	server, err := NewServer("data", loc)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	server.storage.now = func() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, loc) }

	router := chi.NewRouter()
	server.Routes(router)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return external.NewClient(ts.URL, 2*time.Second), server.storage
}

func TestMockBackend_Catalog(t *testing.T) {
	client, _ := newTestBackend(t)
	ctx := context.Background()

	services, err := client.ListServices(ctx)
	if err != nil {
		t.Fatalf("ListServices: %v", err)
	}
	if len(services) == 0 {
		t.Fatal("Expected seeded services")
	}

	vouchers, err := client.SearchVouchers(ctx, "summer")
	if err != nil {
		t.Fatalf("SearchVouchers: %v", err)
	}
	if len(vouchers) != 1 || vouchers[0].Code != "SUMMER10" {
		t.Fatalf("Expected SUMMER10, got %+v", vouchers)
	}
	v := vouchers[0].Domain()
	if v.MaxDiscountAmount == nil || !v.MaxDiscountAmount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected cap 50000, got %v", v.MaxDiscountAmount)
	}
	if v.ValidTo.IsZero() {
		t.Error("Expected ValidTo to be parsed")
	}
}

func TestMockBackend_BookingFlow(t *testing.T) {
	client, _ := newTestBackend(t)
	ctx := context.Background()

	// 18:00-19:00 local, peak rate
	start := time.Date(2025, 6, 20, 11, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	price, err := client.GetSlotPrice(ctx, "court-3", start, end)
	if err != nil {
		t.Fatalf("GetSlotPrice: %v", err)
	}
	if !price.Available || !price.Price.Equal(decimal.NewFromInt(260000)) {
		t.Fatalf("Unexpected slot price: %+v", price)
	}

	req := &external.BookingRequest{
		Reference: "bk-1",
		UserID:    "user-1",
		CourtID:   "court-3",
		SlotStart: start,
		SlotEnd:   end,
		ServiceLines: []external.BookingLine{
			{ServiceID: "water", Quantity: 2, UnitPrice: decimal.NewFromInt(10000)},
		},
		VoucherCode: "nightowl",
	}
	inv, err := client.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if !inv.OriginalAmount.Equal(decimal.NewFromInt(280000)) ||
		!inv.DiscountAmount.Equal(decimal.NewFromInt(56000)) ||
		!inv.FinalAmount.Equal(decimal.NewFromInt(224000)) {
		t.Errorf("Unexpected amounts: %+v", inv)
	}

	again, err := client.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking replay: %v", err)
	}
	if again.InvoiceID != inv.InvoiceID {
		t.Errorf("Replay created a new invoice: %s vs %s", again.InvoiceID, inv.InvoiceID)
	}

	other := *req
	other.Reference = "bk-2"
	if _, err := client.CreateBooking(ctx, &other); !errors.Is(err, external.ErrConflict) {
		t.Errorf("Expected conflict for taken slot, got %v", err)
	}

	price, err = client.GetSlotPrice(ctx, "court-3", start, end)
	if err != nil {
		t.Fatalf("GetSlotPrice: %v", err)
	}
	if price.Available {
		t.Error("Slot should no longer be available")
	}

	res, err := client.PayInvoice(ctx, inv.InvoiceID, &external.PaymentRequest{Method: "cash", Amount: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("PayInvoice: %v", err)
	}
	if res.Success {
		t.Error("Payment with the wrong amount should fail")
	}

	res, err = client.PayInvoice(ctx, inv.InvoiceID, &external.PaymentRequest{Method: "e_wallet", Amount: inv.FinalAmount})
	if err != nil {
		t.Fatalf("PayInvoice: %v", err)
	}
	if !res.Success || res.PaidAt == nil {
		t.Errorf("Expected successful payment, got %+v", res)
	}

	if err := client.CancelBooking(ctx, inv.BookingID); !errors.Is(err, external.ErrConflict) {
		t.Errorf("Expected conflict cancelling a paid booking, got %v", err)
	}
}

func TestMockBackend_CancelFreesSlot(t *testing.T) {
	client, _ := newTestBackend(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 21, 2, 0, 0, 0, time.UTC)
	req := &external.BookingRequest{Reference: "bk-9", UserID: "user-1", CourtID: "court-1", SlotStart: start, SlotEnd: start.Add(90 * time.Minute)}

	inv, err := client.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	// 09:00-10:30 local, off-peak
	if !inv.FinalAmount.Equal(decimal.NewFromInt(180000)) {
		t.Errorf("Expected 180000, got %s", inv.FinalAmount)
	}
	if err := client.CancelBooking(ctx, inv.BookingID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	price, err := client.GetSlotPrice(ctx, "court-1", start, start.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("GetSlotPrice: %v", err)
	}
	if !price.Available {
		t.Error("Cancelled slot should be available again")
	}

	if _, err := client.GetSlotPrice(ctx, "court-99", start, start.Add(time.Hour)); !errors.Is(err, external.ErrNotFound) {
		t.Errorf("Expected not found for unknown court, got %v", err)
	}
}
