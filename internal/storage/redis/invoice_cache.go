package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shuttlesync/internal/domain/bookings"

	goredis "github.com/redis/go-redis/v9"
)

// InvoiceCache provides Redis-backed cache for invoices with TTL
type InvoiceCache struct {
	client *Client
}

var _ bookings.InvoiceCache = (*InvoiceCache)(nil)

func NewInvoiceCache(client *Client) *InvoiceCache {
	return &InvoiceCache{client: client}
}

func invoiceCacheKey(invoiceID string) string {
	return fmt.Sprintf("invoice:%s", invoiceID)
}

// GetInvoice returns cached invoice or nil if not found
func (c *InvoiceCache) GetInvoice(ctx context.Context, invoiceID string) (*bookings.Invoice, error) {
	if err := c.client.ready(); err != nil {
		return nil, err
	}

	data, err := c.client.rdb.Get(ctx, invoiceCacheKey(invoiceID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	var inv bookings.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invoice: %w", err)
	}
	return &inv, nil
}

func (c *InvoiceCache) SetInvoice(ctx context.Context, inv *bookings.Invoice, ttl time.Duration) error {
	if err := c.client.ready(); err != nil {
		return err
	}
	if inv == nil || inv.ID == "" {
		return fmt.Errorf("invalid invoice")
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice: %w", err)
	}
	return c.client.rdb.Set(ctx, invoiceCacheKey(inv.ID), payload, ttl).Err()
}

func (c *InvoiceCache) Invalidate(ctx context.Context, invoiceID string) error {
	if err := c.client.ready(); err != nil {
		return err
	}
	return c.client.rdb.Del(ctx, invoiceCacheKey(invoiceID)).Err()
}
