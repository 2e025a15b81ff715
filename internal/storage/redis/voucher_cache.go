package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/vouchers"

	goredis "github.com/redis/go-redis/v9"
)

// VoucherCache keeps recently looked-up vouchers by normalized code.
type VoucherCache struct {
	client *Client
}

var _ vouchers.Cache = (*VoucherCache)(nil)

func NewVoucherCache(client *Client) *VoucherCache {
	return &VoucherCache{client: client}
}

func voucherCacheKey(code string) string {
	return fmt.Sprintf("voucher:%s", discount.NormalizeCode(code))
}

func (c *VoucherCache) GetVoucher(ctx context.Context, code string) (*discount.Voucher, error) {
	if err := c.client.ready(); err != nil {
		return nil, err
	}
	data, err := c.client.rdb.Get(ctx, voucherCacheKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	var v discount.Voucher
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal voucher: %w", err)
	}
	return &v, nil
}

func (c *VoucherCache) SetVoucher(ctx context.Context, v *discount.Voucher, ttl time.Duration) error {
	if err := c.client.ready(); err != nil {
		return err
	}
	if v == nil || v.Code == "" {
		return fmt.Errorf("invalid voucher")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal voucher: %w", err)
	}
	return c.client.rdb.Set(ctx, voucherCacheKey(v.Code), payload, ttl).Err()
}
