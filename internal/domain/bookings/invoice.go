package bookings

import (
	"time"

	"shuttlesync/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	StatusPending       InvoiceStatus = "PENDING"
	StatusPaid          InvoiceStatus = "PAID"
	StatusPaymentFailed InvoiceStatus = "PAYMENT_FAILED"
	StatusCancelled     InvoiceStatus = "CANCELLED"
)

// Open invoices can still be paid or cancelled.
func (s InvoiceStatus) Open() bool {
	return s == StatusPending || s == StatusPaymentFailed
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodEWallet      PaymentMethod = "e_wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodEWallet:
		return true
	}
	return false
}

// Invoice is the local snapshot of a confirmed booking. Amounts are the
// backend's.
type Invoice struct {
	ID               string                `json:"id"`
	BookingID        string                `json:"booking_id"`
	BackendBookingID string                `json:"backend_booking_id"`
	UserID           string                `json:"user_id"`
	CourtID          string                `json:"court_id"`
	SlotStart        time.Time             `json:"slot_start"`
	SlotEnd          time.Time             `json:"slot_end"`
	CourtPrice       decimal.Decimal       `json:"court_price"`
	Lines            []pricing.ServiceLine `json:"service_lines"`
	VoucherCode      string                `json:"voucher_code,omitempty"`
	OriginalAmount   decimal.Decimal       `json:"original_amount"`
	DiscountAmount   decimal.Decimal       `json:"discount_amount"`
	FinalAmount      decimal.Decimal       `json:"final_amount"`
	Status           InvoiceStatus         `json:"status"`
	PaymentMethod    PaymentMethod         `json:"payment_method,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	PaidAt           *time.Time            `json:"paid_at,omitempty"`
}

type ListFilter struct {
	Status InvoiceStatus
	Limit  int
}
