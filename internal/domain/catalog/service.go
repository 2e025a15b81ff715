// Package catalog serves the facility's extra services (shuttlecocks, racket
// rental, drinks) with their current unit prices.
package catalog

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"shuttlesync/internal/domain/pricing"
	"shuttlesync/internal/external"

	"github.com/rs/zerolog"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	// backend down and nothing cached yet
	ErrCatalogUnavailable = errors.New("service catalog unavailable")
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "catalog").Logger()
}

type Backend interface {
	ListServices(ctx context.Context) ([]external.ServiceItem, error)
}

type ServiceInterface interface {
	List(ctx context.Context) ([]pricing.CatalogItem, error)
	Get(ctx context.Context, serviceID string) (pricing.CatalogItem, error)
}

type Service struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	items     []pricing.CatalogItem
	byID      map[string]pricing.CatalogItem
	expiresAt time.Time
}

var _ ServiceInterface = (*Service)(nil)

func NewService(backend Backend, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]pricing.CatalogItem, error) {
	items, _, err := s.load(ctx)
	return items, err
}

func (s *Service) Get(ctx context.Context, serviceID string) (pricing.CatalogItem, error) {
	_, byID, err := s.load(ctx)
	if err != nil {
		return pricing.CatalogItem{}, err
	}
	item, ok := byID[serviceID]
	if !ok {
		return pricing.CatalogItem{}, ErrServiceNotFound
	}
	return item, nil
}

// load returns the cached catalog while it is fresh. When the backend fails
// a stale copy is served rather than an error.
func (s *Service) load(ctx context.Context) ([]pricing.CatalogItem, map[string]pricing.CatalogItem, error) {
	s.mu.RLock()
	if s.byID != nil && s.now().Before(s.expiresAt) {
		items, byID := s.items, s.byID
		s.mu.RUnlock()
		return items, byID, nil
	}
	s.mu.RUnlock()

	fetched, err := s.backend.ListServices(ctx)
	if err != nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.byID != nil {
			logger.Warn().Err(err).Time("stale_since", s.expiresAt).Msg("serving stale service catalog")
			return s.items, s.byID, nil
		}
		return nil, nil, ErrCatalogUnavailable
	}

	items := make([]pricing.CatalogItem, 0, len(fetched))
	byID := make(map[string]pricing.CatalogItem, len(fetched))
	for _, f := range fetched {
		item := f.CatalogItem()
		items = append(items, item)
		byID[item.ServiceID] = item
	}

	s.mu.Lock()
	s.items, s.byID = items, byID
	s.expiresAt = s.now().Add(s.ttl)
	s.mu.Unlock()

	return items, byID, nil
}
