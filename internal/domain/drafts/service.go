// Package drafts keeps the per-session order context: the court slot, the
// picked services and at most one voucher, until the booking is confirmed.
package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"
	"shuttlesync/internal/external"
	"shuttlesync/internal/session"

	"github.com/google/uuid"
)

type SlotPricer interface {
	GetSlotPrice(ctx context.Context, courtID string, start, end time.Time) (*external.SlotPrice, error)
}

type Catalog interface {
	Get(ctx context.Context, serviceID string) (pricing.CatalogItem, error)
}

type VoucherLookup interface {
	Lookup(ctx context.Context, code string) (*discount.Voucher, error)
}

type ServiceInterface interface {
	CreateDraft(ctx context.Context, s *session.Session, req *CreateDraftRequest) (*View, error)
	GetDraft(ctx context.Context, s *session.Session, draftID string) (*View, error)
	SetServiceQuantity(ctx context.Context, s *session.Session, draftID, serviceID string, qty int) (*View, error)
	ApplyVoucher(ctx context.Context, s *session.Session, draftID, code string) (*View, error)
	RemoveVoucher(ctx context.Context, s *session.Session, draftID string) (*View, error)
}

type Service struct {
	repo     Repository
	slots    SlotPricer
	catalog  Catalog
	vouchers VoucherLookup

	ttl time.Duration
	loc *time.Location
	now func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, slots SlotPricer, catalog Catalog, vouchers VoucherLookup, ttl time.Duration, loc *time.Location) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:     repo,
		slots:    slots,
		catalog:  catalog,
		vouchers: vouchers,
		ttl:      ttl,
		loc:      loc,
		now:      time.Now,
	}
}

type CreateDraftRequest struct {
	CourtID   string
	SlotStart time.Time
	SlotEnd   time.Time
}

// CreateDraft starts an order for a slot, or returns the caller's live draft
// for the same slot.
func (s *Service) CreateDraft(ctx context.Context, sess *session.Session, req *CreateDraftRequest) (*View, error) {
	if req == nil || strings.TrimSpace(req.CourtID) == "" {
		return nil, fmt.Errorf("court_id is required")
	}
	if !req.SlotEnd.After(req.SlotStart) {
		return nil, ErrInvalidSlot
	}

	key := SlotKey{UserID: sess.UserID, CourtID: req.CourtID, Start: req.SlotStart, End: req.SlotEnd}
	if existing, err := s.repo.GetDraftBySlot(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to get existing draft: %w", err)
	} else if existing != nil && s.now().Before(existing.ExpiresAt) {
		return s.view(ctx, existing, nil)
	}

	price, err := s.slots.GetSlotPrice(ctx, req.CourtID, req.SlotStart, req.SlotEnd)
	if err != nil {
		if errors.Is(err, external.ErrNotFound) || errors.Is(err, external.ErrConflict) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if price == nil || !price.Available {
		return nil, ErrSlotUnavailable
	}

	now := s.now()
	d := &Draft{
		ID:         uuid.New().String(),
		UserID:     sess.UserID,
		CourtID:    req.CourtID,
		SlotStart:  req.SlotStart,
		SlotEnd:    req.SlotEnd,
		CourtPrice: price.Price,
		Lines:      []pricing.ServiceLine{},
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}

	if err := s.repo.SaveDraft(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	if err := s.repo.SetDraftBySlot(ctx, key, d); err != nil {
		return nil, fmt.Errorf("failed to index draft: %w", err)
	}
	return s.view(ctx, d, nil)
}

func (s *Service) GetDraft(ctx context.Context, sess *session.Session, draftID string) (*View, error) {
	d, err := s.load(ctx, sess, draftID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, d, nil)
}

// SetServiceQuantity sets how many of a service the order has. Zero removes
// the line. A service not yet on the order is added at its catalog price.
func (s *Service) SetServiceQuantity(ctx context.Context, sess *session.Session, draftID, serviceID string, qty int) (*View, error) {
	if qty < 0 {
		return nil, pricing.ErrInvalidQuantity
	}
	d, err := s.load(ctx, sess, draftID)
	if err != nil {
		return nil, err
	}

	lines, err := pricing.SetQuantity(d.Lines, serviceID, qty)
	if errors.Is(err, pricing.ErrUnknownLine) {
		item, cerr := s.catalog.Get(ctx, serviceID)
		if cerr != nil {
			return nil, cerr
		}
		lines, err = pricing.AddService(d.Lines, item, qty)
	}
	if err != nil {
		return nil, err
	}

	d.Lines = lines
	if err := s.repo.SaveDraft(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return s.view(ctx, d, nil)
}

// ApplyVoucher attaches a voucher after checking it against the current
// subtotal. A rejected voucher is not stored; the *discount.Rejection is
// returned as the error.
func (s *Service) ApplyVoucher(ctx context.Context, sess *session.Session, draftID, code string) (*View, error) {
	d, err := s.load(ctx, sess, draftID)
	if err != nil {
		return nil, err
	}

	v, err := s.vouchers.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := discount.Validate(d.Subtotal(), v, s.now(), s.loc); err != nil {
		return nil, err
	}

	d.VoucherCode = v.Code
	if err := s.repo.SaveDraft(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return s.view(ctx, d, v)
}

func (s *Service) RemoveVoucher(ctx context.Context, sess *session.Session, draftID string) (*View, error) {
	d, err := s.load(ctx, sess, draftID)
	if err != nil {
		return nil, err
	}
	if d.VoucherCode != "" {
		d.VoucherCode = ""
		if err := s.repo.SaveDraft(ctx, d); err != nil {
			return nil, fmt.Errorf("failed to save draft: %w", err)
		}
	}
	return s.view(ctx, d, nil)
}

// Checkout loads a draft for confirmation with its totals freshly computed.
func (s *Service) Checkout(ctx context.Context, sess *session.Session, draftID string) (*View, error) {
	return s.GetDraft(ctx, sess, draftID)
}

// MarkUsed claims the draft for a single booking.
func (s *Service) MarkUsed(ctx context.Context, draftID string) (bool, error) {
	return s.repo.MarkDraftUsed(ctx, draftID)
}

// Release undoes MarkUsed after a confirmation that did not go through.
func (s *Service) Release(ctx context.Context, draftID string) error {
	return s.repo.UnmarkDraftUsed(ctx, draftID)
}

// Discard drops a confirmed draft and its slot index.
func (s *Service) Discard(ctx context.Context, d *Draft) error {
	return s.repo.DeleteDraft(ctx, d)
}

func (s *Service) load(ctx context.Context, sess *session.Session, draftID string) (*Draft, error) {
	if draftID == "" {
		return nil, ErrDraftNotFound
	}
	d, err := s.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if d == nil {
		return nil, ErrDraftNotFound
	}
	if !sess.CanAccess(d.UserID) {
		return nil, ErrForbidden
	}
	if !s.now().Before(d.ExpiresAt) {
		return nil, ErrDraftExpired
	}
	return d, nil
}

// view prices d from scratch. known short-circuits the voucher lookup when
// the caller already holds the voucher.
func (s *Service) view(ctx context.Context, d *Draft, known *discount.Voucher) (*View, error) {
	out := &View{Draft: d}

	v := known
	if v == nil && d.VoucherCode != "" {
		var err error
		v, err = s.vouchers.Lookup(ctx, d.VoucherCode)
		if err != nil {
			rej, ok := discount.AsRejection(err)
			if !ok {
				return nil, err
			}
			out.Rejection = rej
		}
	}

	q, err := pricing.Quote(d.CourtPrice, d.Lines, v, s.now(), s.loc)
	if err != nil {
		rej, ok := discount.AsRejection(err)
		if !ok {
			return nil, err
		}
		out.Rejection = rej
		v = nil
	}
	out.Quote = q
	out.Voucher = v
	return out, nil
}
