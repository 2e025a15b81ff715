// Package bookings turns a draft into a backend booking and keeps a local
// snapshot of its invoice for idempotent confirmation and fast reads.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/drafts"
	"shuttlesync/internal/external"
	"shuttlesync/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var (
	ErrDraftAlreadyUsed      = errors.New("draft already used")
	ErrNoSuchInvoice         = errors.New("invoice not found")
	ErrInvoiceNotPayable     = errors.New("invoice is not payable")
	ErrInvoiceNotCancellable = errors.New("invoice cannot be cancelled")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrForbidden             = errors.New("forbidden")
	ErrBackend               = errors.New("backend unavailable")
)

const (
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingCancelled     = "booking.cancelled"
	EventInvoicePaid          = "invoice.paid"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "bookings").Logger()
}

type Drafts interface {
	Checkout(ctx context.Context, s *session.Session, draftID string) (*drafts.View, error)
	MarkUsed(ctx context.Context, draftID string) (bool, error)
	Release(ctx context.Context, draftID string) error
	Discard(ctx context.Context, d *drafts.Draft) error
}

type Backend interface {
	CreateBooking(ctx context.Context, req *external.BookingRequest) (*external.BookingInvoice, error)
	PayInvoice(ctx context.Context, invoiceID string, req *external.PaymentRequest) (*external.PaymentResult, error)
	CancelBooking(ctx context.Context, bookingID string) error
}

type InvoiceCache interface {
	GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error)
	SetInvoice(ctx context.Context, inv *Invoice, ttl time.Duration) error
	Invalidate(ctx context.Context, invoiceID string) error
}

type Events interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
}

type ServiceInterface interface {
	ConfirmBooking(ctx context.Context, s *session.Session, req *ConfirmBookingRequest) (*Invoice, error)
	GetInvoice(ctx context.Context, s *session.Session, invoiceID string) (*Invoice, error)
	PayInvoice(ctx context.Context, s *session.Session, invoiceID string, method PaymentMethod) (*Invoice, error)
	CancelBooking(ctx context.Context, s *session.Session, invoiceID string) (*Invoice, error)
	ListInvoices(ctx context.Context, s *session.Session, filter ListFilter) ([]*Invoice, error)
}

type Service struct {
	repo     Repository
	drafts   Drafts
	backend  Backend
	cache    InvoiceCache
	events   Events
	cacheTTL time.Duration

	singleFlight *singleflight.Group
	now          func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

type Options struct {
	Cache    InvoiceCache
	Events   Events
	CacheTTL time.Duration
}

func NewService(repo Repository, d Drafts, backend Backend, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &Service{
		repo:         repo,
		drafts:       d,
		backend:      backend,
		cache:        opts.Cache,
		events:       opts.Events,
		cacheTTL:     opts.CacheTTL,
		singleFlight: &singleflight.Group{},
		now:          time.Now,
	}
}

type ConfirmBookingRequest struct {
	// client-generated, makes confirmation idempotent
	BookingID string
	DraftID   string
}

// ConfirmBooking submits the draft to the backend and records the returned
// invoice. Repeating a request with the same BookingID returns the invoice
// from the first call.
func (s *Service) ConfirmBooking(ctx context.Context, sess *session.Session, req *ConfirmBookingRequest) (*Invoice, error) {
	if req == nil || req.BookingID == "" {
		return nil, fmt.Errorf("booking_id is required")
	}
	existing, err := s.repo.GetInvoiceByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing booking: %w", err)
	}
	if existing != nil {
		if !sess.CanAccess(existing.UserID) {
			return nil, ErrForbidden
		}
		return existing, nil
	}

	view, err := s.drafts.Checkout(ctx, sess, req.DraftID)
	if err != nil {
		return nil, err
	}
	if view.Rejection != nil {
		return nil, view.Rejection
	}
	d := view.Draft

	marked, err := s.drafts.MarkUsed(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark draft as used: %w", err)
	}
	if !marked {
		return nil, ErrDraftAlreadyUsed
	}

	created, err := s.backend.CreateBooking(ctx, bookingRequest(req.BookingID, view))
	if err != nil {
		s.release(ctx, d.ID)
		if errors.Is(err, external.ErrConflict) {
			return nil, drafts.ErrSlotUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	inv := s.snapshot(req.BookingID, view, created)
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		if cerr := s.backend.CancelBooking(ctx, created.BookingID); cerr != nil {
			logger.Error().Err(cerr).Str("booking_id", req.BookingID).Str("backend_booking_id", created.BookingID).
				Msg("compensating cancel failed, backend booking left without local invoice")
		}
		s.release(ctx, d.ID)
		return nil, fmt.Errorf("failed to store invoice: %w", err)
	}

	if err := s.drafts.Discard(ctx, d); err != nil {
		logger.Warn().Err(err).Str("draft_id", d.ID).Msg("failed to discard confirmed draft")
	}
	if s.cache != nil {
		_ = s.cache.SetInvoice(ctx, inv, s.cacheTTL)
	}
	s.publish(ctx, EventBookingConfirmed, inv)

	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, sess *session.Session, invoiceID string) (*Invoice, error) {
	if invoiceID == "" {
		return nil, ErrNoSuchInvoice
	}

	inv, err := s.getInvoiceCached(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNoSuchInvoice
	}
	if !sess.CanAccess(inv.UserID) {
		return nil, ErrForbidden
	}
	return inv, nil
}

func (s *Service) getInvoiceCached(ctx context.Context, invoiceID string) (*Invoice, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetInvoice(ctx, invoiceID); err == nil && cached != nil {
			return cached, nil
		}
	}

	result, err, _ := s.singleFlight.Do(invoiceID, func() (interface{}, error) {
		inv, err := s.repo.GetInvoiceByID(ctx, invoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to get invoice: %w", err)
		}
		if inv == nil {
			return nil, nil
		}

		if s.cache != nil {
			_ = s.cache.SetInvoice(ctx, inv, s.cacheTTL)
		}

		return inv, nil
	})

	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	return result.(*Invoice), nil
}

// PayInvoice records a payment with the backend. Only PENDING and
// PAYMENT_FAILED invoices are payable; for anything else the invoice is
// returned together with ErrInvoiceNotPayable. A declined or failed payment
// leaves the invoice in PAYMENT_FAILED.
func (s *Service) PayInvoice(ctx context.Context, sess *session.Session, invoiceID string, method PaymentMethod) (*Invoice, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	inv, err := s.loadOwned(ctx, sess, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Open() {
		return inv, ErrInvoiceNotPayable
	}

	res, payErr := s.backend.PayInvoice(ctx, inv.ID, &external.PaymentRequest{
		Method: string(method),
		Amount: inv.FinalAmount,
	})

	status := StatusPaid
	var paidAt *time.Time
	switch {
	case payErr != nil:
		logger.Warn().Err(payErr).Str("invoice_id", inv.ID).Msg("payment failed")
		status = StatusPaymentFailed
	case res == nil || !res.Success:
		status = StatusPaymentFailed
	default:
		at := s.now()
		if res.PaidAt != nil {
			at = *res.PaidAt
		}
		paidAt = &at
	}

	if err := s.repo.UpdateInvoiceStatus(ctx, inv.ID, status, method, paidAt); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	updated, err := s.refresh(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	if status == StatusPaid {
		s.publish(ctx, EventInvoicePaid, updated)
	} else {
		s.publish(ctx, EventInvoicePaymentFailed, updated)
	}
	return updated, nil
}

// CancelBooking cancels an unpaid booking with the backend.
func (s *Service) CancelBooking(ctx context.Context, sess *session.Session, invoiceID string) (*Invoice, error) {
	inv, err := s.loadOwned(ctx, sess, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Open() {
		return inv, ErrInvoiceNotCancellable
	}

	if err := s.backend.CancelBooking(ctx, inv.BackendBookingID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if err := s.repo.UpdateInvoiceStatus(ctx, inv.ID, StatusCancelled, inv.PaymentMethod, nil); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	updated, err := s.refresh(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventBookingCancelled, updated)
	return updated, nil
}

// ListInvoices is for the admin portal only.
func (s *Service) ListInvoices(ctx context.Context, sess *session.Session, filter ListFilter) ([]*Invoice, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	out, err := s.repo.ListInvoices(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return out, nil
}

func (s *Service) loadOwned(ctx context.Context, sess *session.Session, invoiceID string) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if inv == nil {
		return nil, ErrNoSuchInvoice
	}
	if !sess.CanAccess(inv.UserID) {
		return nil, ErrForbidden
	}
	return inv, nil
}

func (s *Service) refresh(ctx context.Context, invoiceID string) (*Invoice, error) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, invoiceID)
	}
	updated, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload invoice: %w", err)
	}
	if updated == nil {
		return nil, ErrNoSuchInvoice
	}
	if s.cache != nil {
		_ = s.cache.SetInvoice(ctx, updated, s.cacheTTL)
	}
	return updated, nil
}

func (s *Service) release(ctx context.Context, draftID string) {
	if err := s.drafts.Release(ctx, draftID); err != nil {
		logger.Warn().Err(err).Str("draft_id", draftID).Msg("failed to release draft")
	}
}

func bookingRequest(bookingID string, view *drafts.View) *external.BookingRequest {
	d := view.Draft
	lines := make([]external.BookingLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, external.BookingLine{ServiceID: l.ServiceID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return &external.BookingRequest{
		Reference:      bookingID,
		UserID:         d.UserID,
		CourtID:        d.CourtID,
		SlotStart:      d.SlotStart,
		SlotEnd:        d.SlotEnd,
		CourtPrice:     d.CourtPrice,
		ServiceLines:   lines,
		VoucherCode:    view.Quote.VoucherCode,
		DiscountAmount: view.Quote.DiscountAmount,
		FinalAmount:    view.Quote.FinalAmount,
	}
}

// snapshot builds the local invoice from the backend's answer. The backend's
// amounts win; they are clamped so the stored totals stay consistent.
func (s *Service) snapshot(bookingID string, view *drafts.View, created *external.BookingInvoice) *Invoice {
	d := view.Draft
	original := created.OriginalAmount
	if original.IsZero() && !view.Quote.OriginalAmount.IsZero() {
		original = view.Quote.OriginalAmount
	}
	original = decimal.Max(original, decimal.Zero)
	disc := decimal.Min(decimal.Max(created.DiscountAmount, decimal.Zero), original)
	final := discount.ComputeFinalAmount(original, disc)

	if !final.Equal(created.FinalAmount) || !final.Equal(view.Quote.FinalAmount) {
		logger.Warn().
			Str("booking_id", bookingID).
			Str("local_final", view.Quote.FinalAmount.String()).
			Str("backend_final", created.FinalAmount.String()).
			Str("stored_final", final.String()).
			Msg("invoice totals differ from local quote")
	}

	status := InvoiceStatus(created.Status)
	if status == "" {
		status = StatusPending
	}
	createdAt := created.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	return &Invoice{
		ID:               created.InvoiceID,
		BookingID:        bookingID,
		BackendBookingID: created.BookingID,
		UserID:           d.UserID,
		CourtID:          d.CourtID,
		SlotStart:        d.SlotStart,
		SlotEnd:          d.SlotEnd,
		CourtPrice:       d.CourtPrice,
		Lines:            d.Lines,
		VoucherCode:      view.Quote.VoucherCode,
		OriginalAmount:   original,
		DiscountAmount:   disc,
		FinalAmount:      final,
		Status:           status,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

// Event is the payload published for booking and invoice changes.
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	OccurredAt  time.Time       `json:"occurred_at"`
	InvoiceID   string          `json:"invoice_id"`
	BookingID   string          `json:"booking_id"`
	UserID      string          `json:"user_id"`
	CourtID     string          `json:"court_id"`
	SlotStart   time.Time       `json:"slot_start"`
	SlotEnd     time.Time       `json:"slot_end"`
	VoucherCode string          `json:"voucher_code,omitempty"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Status      InvoiceStatus   `json:"status"`
}

func (s *Service) publish(ctx context.Context, eventType string, inv *Invoice) {
	if s.events == nil {
		return
	}
	ev := Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		OccurredAt:  s.now(),
		InvoiceID:   inv.ID,
		BookingID:   inv.BookingID,
		UserID:      inv.UserID,
		CourtID:     inv.CourtID,
		SlotStart:   inv.SlotStart,
		SlotEnd:     inv.SlotEnd,
		VoucherCode: inv.VoucherCode,
		FinalAmount: inv.FinalAmount,
		Status:      inv.Status,
	}
	if err := s.events.Publish(ctx, eventType, ev); err != nil {
		logger.Error().Err(err).Str("event", eventType).Str("invoice_id", inv.ID).Msg("failed to publish event")
	}
}
