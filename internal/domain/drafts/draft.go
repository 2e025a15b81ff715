package drafts

import (
	"errors"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrDraftExpired  = errors.New("draft expired")
	// draft belongs to another user
	ErrForbidden = errors.New("forbidden")
	// backend refused the slot or it is already taken
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrInvalidSlot     = errors.New("slot end must be after slot start")
	ErrBackend         = errors.New("backend unavailable")
)

// Draft is an order being put together for one court slot. It lives in
// Redis until it is confirmed or expires.
type Draft struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	CourtID     string                `json:"court_id"`
	SlotStart   time.Time             `json:"slot_start"`
	SlotEnd     time.Time             `json:"slot_end"`
	CourtPrice  decimal.Decimal       `json:"court_price"`
	Lines       []pricing.ServiceLine `json:"service_lines"`
	VoucherCode string                `json:"voucher_code,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	ExpiresAt   time.Time             `json:"expires_at"`
}

func (d *Draft) Subtotal() decimal.Decimal {
	return pricing.ComputeSubtotal(d.CourtPrice, d.Lines)
}

func (d *Draft) SlotKey() SlotKey {
	return SlotKey{UserID: d.UserID, CourtID: d.CourtID, Start: d.SlotStart, End: d.SlotEnd}
}

// SlotKey identifies the one live draft a user may hold for a slot.
type SlotKey struct {
	UserID  string
	CourtID string
	Start   time.Time
	End     time.Time
}

// View is a draft with its totals computed at read time. Nothing in a view
// is stored.
type View struct {
	Draft   *Draft
	Quote   discount.Quote
	Voucher *discount.Voucher
	// Set when Draft.VoucherCode no longer applies. Quote then shows the
	// undiscounted amount.
	Rejection *discount.Rejection
}
