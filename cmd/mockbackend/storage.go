package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"
	"shuttlesync/internal/external"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	errNotFound   = errors.New("not found")
	errConflict   = errors.New("conflict")
	errBadRequest = errors.New("bad request")
)

// cards above this amount are declined
var cardLimit = decimal.NewFromInt(10_000_000)

// Court is a bookable court with a flat and a peak hourly rate.
type Court struct {
	CourtID        string          `json:"courtId"`
	Name           string          `json:"name"`
	HourlyRate     decimal.Decimal `json:"hourlyRate"`
	PeakHourlyRate decimal.Decimal `json:"peakHourlyRate"`
	PeakStartHour  int             `json:"peakStartHour"`
	PeakEndHour    int             `json:"peakEndHour"`
}

// price charges every minute of [start, end) at the rate in force then.
func (c *Court) price(start, end time.Time, loc *time.Location) decimal.Decimal {
	total := decimal.Zero
	perMinute := c.HourlyRate.Div(decimal.NewFromInt(60))
	peakPerMinute := c.PeakHourlyRate.Div(decimal.NewFromInt(60))
	for t := start; t.Before(end); t = t.Add(time.Minute) {
		h := t.In(loc).Hour()
		if h >= c.PeakStartHour && h < c.PeakEndHour && c.PeakHourlyRate.IsPositive() {
			total = total.Add(peakPerMinute)
		} else {
			total = total.Add(perMinute)
		}
	}
	return total.Round(0)
}

type booking struct {
	request   external.BookingRequest
	invoice   external.BookingInvoice
	cancelled bool
	paid      bool
}

func (b *booking) overlaps(courtID string, start, end time.Time) bool {
	return !b.cancelled &&
		b.request.CourtID == courtID &&
		b.request.SlotStart.Before(end) &&
		start.Before(b.request.SlotEnd)
}

// Storage is the in-memory state of the facility backend.
type Storage struct {
	mu          sync.RWMutex
	services    []external.ServiceItem
	vouchers    []external.Voucher
	courts      map[string]*Court
	bookings    map[string]*booking
	byReference map[string]*booking
	byInvoice   map[string]*booking
	loc         *time.Location
	now         func() time.Time
}

func NewStorage(loc *time.Location) *Storage {
	if loc == nil {
		loc = time.UTC
	}
	return &Storage{
		courts:      make(map[string]*Court),
		bookings:    make(map[string]*booking),
		byReference: make(map[string]*booking),
		byInvoice:   make(map[string]*booking),
		loc:         loc,
		now:         time.Now,
	}
}

// LoadFromJSONFiles loads the seed files in dir.
func (s *Storage) LoadFromJSONFiles(dir string) error {
	var courts []Court
	files := []struct {
		name string
		dst  interface{}
	}{
		{"services.json", &s.services},
		{"vouchers.json", &s.vouchers},
		{"courts.json", &courts},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", f.name, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return fmt.Errorf("failed to parse %s: %w", f.name, err)
		}
	}
	for i := range courts {
		s.courts[courts[i].CourtID] = &courts[i]
	}
	return nil
}

func (s *Storage) Services() []external.ServiceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]external.ServiceItem, len(s.services))
	copy(out, s.services)
	return out
}

// SearchVouchers matches query against voucher codes, case-insensitively.
// An empty query lists everything.
func (s *Storage) SearchVouchers(query string) []external.Voucher {
	q := strings.ToUpper(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []external.Voucher{}
	for _, v := range s.vouchers {
		if q == "" || strings.Contains(strings.ToUpper(v.Code), q) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Storage) SlotPrice(courtID string, start, end time.Time) (*external.SlotPrice, error) {
	if !end.After(start) {
		return nil, errBadRequest
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	court, ok := s.courts[courtID]
	if !ok {
		return nil, errNotFound
	}
	return &external.SlotPrice{
		CourtID:   courtID,
		Start:     start,
		End:       end,
		Price:     court.price(start, end, s.loc),
		Available: !s.slotTaken(courtID, start, end),
	}, nil
}

func (s *Storage) slotTaken(courtID string, start, end time.Time) bool {
	for _, b := range s.bookings {
		if b.overlaps(courtID, start, end) {
			return true
		}
	}
	return false
}

// CreateBooking prices the order itself and ignores the amounts the caller
// sent. Repeating a reference returns the first booking's invoice.
func (s *Storage) CreateBooking(req *external.BookingRequest) (*external.BookingInvoice, error) {
	if req.Reference == "" || req.UserID == "" || !req.SlotEnd.After(req.SlotStart) {
		return nil, errBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byReference[req.Reference]; ok {
		inv := existing.invoice
		return &inv, nil
	}

	court, ok := s.courts[req.CourtID]
	if !ok {
		return nil, errNotFound
	}
	if s.slotTaken(req.CourtID, req.SlotStart, req.SlotEnd) {
		return nil, errConflict
	}

	var lines []pricing.ServiceLine
	for _, l := range req.ServiceLines {
		item, ok := s.service(l.ServiceID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown service %q", errBadRequest, l.ServiceID)
		}
		var err error
		lines, err = pricing.AddService(lines, item.CatalogItem(), l.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}

	courtPrice := court.price(req.SlotStart, req.SlotEnd, s.loc)
	var v *discount.Voucher
	idx := -1
	if req.VoucherCode != "" {
		idx = s.voucherIndex(req.VoucherCode)
		if idx >= 0 {
			v = s.vouchers[idx].Domain()
		}
	}
	quote, err := pricing.Quote(courtPrice, lines, v, s.now(), s.loc)
	if err != nil {
		// a voucher that does not apply is dropped, not an error
		quote, _ = pricing.Quote(courtPrice, lines, nil, s.now(), s.loc)
	} else if idx >= 0 {
		s.vouchers[idx].UsedCount++
	}

	b := &booking{
		request: *req,
		invoice: external.BookingInvoice{
			InvoiceID:      "inv-" + uuid.NewString(),
			BookingID:      "bkg-" + uuid.NewString(),
			OriginalAmount: quote.OriginalAmount,
			DiscountAmount: quote.DiscountAmount,
			FinalAmount:    quote.FinalAmount,
			Status:         "PENDING",
			CreatedAt:      s.now().UTC(),
		},
	}
	b.request.CourtPrice = courtPrice
	s.bookings[b.invoice.BookingID] = b
	s.byReference[req.Reference] = b
	s.byInvoice[b.invoice.InvoiceID] = b

	inv := b.invoice
	return &inv, nil
}

func (s *Storage) service(id string) (external.ServiceItem, bool) {
	for _, item := range s.services {
		if item.ServiceID == id {
			return item, true
		}
	}
	return external.ServiceItem{}, false
}

func (s *Storage) voucherIndex(code string) int {
	for i := range s.vouchers {
		if strings.EqualFold(s.vouchers[i].Code, strings.TrimSpace(code)) {
			return i
		}
	}
	return -1
}

// Pay settles an invoice. Declines are reported in the result, not as
// errors.
func (s *Storage) Pay(invoiceID string, req *external.PaymentRequest) (*external.PaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byInvoice[invoiceID]
	if !ok {
		return nil, errNotFound
	}
	if b.cancelled {
		return nil, errConflict
	}

	res := &external.PaymentResult{InvoiceID: invoiceID}
	switch {
	case b.paid:
		res.Success = true
		res.Message = "already paid"
	case !req.Amount.Equal(b.invoice.FinalAmount):
		res.Message = fmt.Sprintf("amount %s does not match invoice total %s", req.Amount, b.invoice.FinalAmount)
	case req.Method == "card" && req.Amount.GreaterThan(cardLimit):
		res.Message = "card declined: amount over limit"
	default:
		b.paid = true
		b.invoice.Status = "PAID"
		now := s.now().UTC()
		res.Success = true
		res.PaidAt = &now
	}
	return res, nil
}

func (s *Storage) Cancel(bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return errNotFound
	}
	if b.paid {
		return errConflict
	}
	b.cancelled = true
	b.invoice.Status = "CANCELLED"
	return nil
}
