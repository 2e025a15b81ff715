package external

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

// Date accepts "2006-01-02", RFC 3339 timestamps, or null.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.DateOnly, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// ServiceItem is an entry of the facility service catalog.
type ServiceItem struct {
	ServiceID string          `json:"serviceId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (s ServiceItem) CatalogItem() pricing.CatalogItem {
	return pricing.CatalogItem{ServiceID: s.ServiceID, Name: s.Name, UnitPrice: s.UnitPrice}
}

type Voucher struct {
	Code              string           `json:"code"`
	Type              string           `json:"type"`
	Value             decimal.Decimal  `json:"value"`
	MinOrderAmount    decimal.Decimal  `json:"minOrderAmount"`
	MaxDiscountAmount *decimal.Decimal `json:"maxDiscountAmount"`
	ValidFrom         Date             `json:"validFrom"`
	ValidTo           Date             `json:"validTo"`
	Status            string           `json:"status"`
	UsageLimit        int              `json:"usageLimit"`
	UsedCount         int              `json:"usedCount"`
}

func (v Voucher) Domain() *discount.Voucher {
	return &discount.Voucher{
		Code:              v.Code,
		Type:              discount.VoucherType(v.Type),
		Value:             v.Value,
		MinOrderAmount:    v.MinOrderAmount,
		MaxDiscountAmount: v.MaxDiscountAmount,
		ValidFrom:         v.ValidFrom.Time,
		ValidTo:           v.ValidTo.Time,
		Status:            discount.VoucherStatus(v.Status),
		UsageLimit:        v.UsageLimit,
		UsedCount:         v.UsedCount,
	}
}

// SlotPrice is the backend's price for one court time slot.
type SlotPrice struct {
	CourtID   string          `json:"courtId"`
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

type BookingLine struct {
	ServiceID string          `json:"serviceId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// BookingRequest is the finalized order handed to the backend.
type BookingRequest struct {
	Reference      string          `json:"reference"`
	UserID         string          `json:"userId"`
	CourtID        string          `json:"courtId"`
	SlotStart      time.Time       `json:"slotStart"`
	SlotEnd        time.Time       `json:"slotEnd"`
	CourtPrice     decimal.Decimal `json:"courtPrice"`
	ServiceLines   []BookingLine   `json:"serviceLines"`
	VoucherCode    string          `json:"voucherCode,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// BookingInvoice is what the backend returns for a created booking. Its
// amounts are authoritative.
type BookingInvoice struct {
	InvoiceID      string          `json:"invoiceId"`
	BookingID      string          `json:"bookingId"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type PaymentRequest struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentResult struct {
	InvoiceID string     `json:"invoiceId"`
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
}
