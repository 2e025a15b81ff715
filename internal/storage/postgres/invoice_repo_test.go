package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"shuttlesync/internal/domain/bookings"
	"shuttlesync/internal/domain/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Runs against a real database when TEST_DATABASE_URL is set.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := NewDB(context.Background(), url)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestInvoiceRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	inv := &bookings.Invoice{
		ID:               "inv-" + uuid.NewString(),
		BookingID:        "bk-" + uuid.NewString(),
		BackendBookingID: "42",
		UserID:           "user-1",
		CourtID:          "court-1",
		SlotStart:        now.Add(time.Hour),
		SlotEnd:          now.Add(2 * time.Hour),
		CourtPrice:       decimal.NewFromInt(200000),
		Lines: []pricing.ServiceLine{
			{ServiceID: "shuttle", Name: "Shuttlecock tube", Quantity: 2, UnitPrice: decimal.NewFromInt(15000)},
		},
		VoucherCode:    "FLAT50",
		OriginalAmount: decimal.NewFromInt(230000),
		DiscountAmount: decimal.NewFromInt(50000),
		FinalAmount:    decimal.NewFromInt(180000),
		Status:         bookings.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	t.Cleanup(func() { _ = repo.DeleteInvoices(ctx, []string{inv.ID}) })

	if err := repo.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	got, err := repo.GetInvoiceByBookingID(ctx, inv.BookingID)
	if err != nil || got == nil {
		t.Fatalf("GetInvoiceByBookingID: %+v, %v", got, err)
	}
	if got.ID != inv.ID || !got.FinalAmount.Equal(inv.FinalAmount) || len(got.Lines) != 1 || got.VoucherCode != "FLAT50" {
		t.Errorf("unexpected invoice %+v", got)
	}
	if got.PaymentMethod != "" || got.PaidAt != nil {
		t.Errorf("expected no payment yet, got %+v", got)
	}

	paidAt := now.Add(time.Minute)
	if err := repo.UpdateInvoiceStatus(ctx, inv.ID, bookings.StatusPaid, bookings.MethodCard, &paidAt); err != nil {
		t.Fatalf("UpdateInvoiceStatus: %v", err)
	}
	got, err = repo.GetInvoiceByID(ctx, inv.ID)
	if err != nil || got == nil {
		t.Fatalf("GetInvoiceByID: %+v, %v", got, err)
	}
	if got.Status != bookings.StatusPaid || got.PaymentMethod != bookings.MethodCard || got.PaidAt == nil {
		t.Errorf("unexpected paid invoice %+v", got)
	}

	list, err := repo.ListInvoices(ctx, bookings.ListFilter{Status: bookings.StatusPaid, Limit: 500})
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	found := false
	for _, l := range list {
		if l.ID == inv.ID {
			found = true
		}
	}
	if !found {
		t.Error("paid invoice missing from list")
	}

	missing, err := repo.GetInvoiceByID(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("expected nil for missing invoice, got %+v, %v", missing, err)
	}
}
