package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shuttlesync/internal/domain/drafts"

	goredis "github.com/redis/go-redis/v9"
)

// Drafts outlive their ExpiresAt by this much so a late read can tell
// "expired" from "never existed".
const draftGrace = 10 * time.Minute

// DraftRepository implements drafts.Repository on Redis keys with TTLs.
type DraftRepository struct {
	client *Client
}

var _ drafts.Repository = (*DraftRepository)(nil)

func NewDraftRepository(client *Client) *DraftRepository {
	return &DraftRepository{client: client}
}

func keyDraft(draftID string) string {
	return fmt.Sprintf("draft:%s", draftID)
}

func keyDraftUsed(draftID string) string {
	return fmt.Sprintf("draft:%s:used", draftID)
}

func keyIdxSlot(k drafts.SlotKey) string {
	return fmt.Sprintf("draft_idx:user:%s:court:%s:%d:%d", k.UserID, k.CourtID, k.Start.Unix(), k.End.Unix())
}

func draftTTL(d *drafts.Draft) time.Duration {
	ttl := time.Until(d.ExpiresAt) + draftGrace
	if ttl <= 0 {
		ttl = time.Second
	}
	return ttl
}

func (r *DraftRepository) SaveDraft(ctx context.Context, d *drafts.Draft) error {
	if err := r.client.ready(); err != nil {
		return err
	}
	if d == nil || d.ID == "" {
		return fmt.Errorf("invalid draft")
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := r.client.rdb.Set(ctx, keyDraft(d.ID), payload, draftTTL(d)).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

func (r *DraftRepository) GetDraft(ctx context.Context, draftID string) (*drafts.Draft, error) {
	if err := r.client.ready(); err != nil {
		return nil, err
	}

	data, err := r.client.rdb.Get(ctx, keyDraft(draftID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var d drafts.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &d, nil
}

func (r *DraftRepository) GetDraftBySlot(ctx context.Context, key drafts.SlotKey) (*drafts.Draft, error) {
	if err := r.client.ready(); err != nil {
		return nil, err
	}
	draftID, err := r.client.rdb.Get(ctx, keyIdxSlot(key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis GET index failed: %w", err)
	}
	return r.GetDraft(ctx, draftID)
}

// SetDraftBySlot points the slot index at d until d expires.
func (r *DraftRepository) SetDraftBySlot(ctx context.Context, key drafts.SlotKey, d *drafts.Draft) error {
	if err := r.client.ready(); err != nil {
		return err
	}
	ttl := time.Until(d.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.rdb.Set(ctx, keyIdxSlot(key), d.ID, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET index failed: %w", err)
	}
	return nil
}

func (r *DraftRepository) MarkDraftUsed(ctx context.Context, draftID string) (bool, error) {
	if err := r.client.ready(); err != nil {
		return false, err
	}

	ttl, err := r.client.rdb.TTL(ctx, keyDraft(draftID)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return false, fmt.Errorf("redis TTL failed: %w", err)
	}
	if ttl <= 0 {
		ttl = draftGrace
	}

	ok, err := r.client.rdb.SetNX(ctx, keyDraftUsed(draftID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX failed: %w", err)
	}
	return ok, nil
}

func (r *DraftRepository) UnmarkDraftUsed(ctx context.Context, draftID string) error {
	if err := r.client.ready(); err != nil {
		return err
	}
	return r.client.rdb.Del(ctx, keyDraftUsed(draftID)).Err()
}

// DeleteDraft removes the draft and its slot index. The used marker stays
// until it expires so a replayed confirmation still fails.
func (r *DraftRepository) DeleteDraft(ctx context.Context, d *drafts.Draft) error {
	if err := r.client.ready(); err != nil {
		return err
	}
	_, err := r.client.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, keyDraft(d.ID))
		pipe.Del(ctx, keyIdxSlot(d.SlotKey()))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}
