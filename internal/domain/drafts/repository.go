package drafts

import (
	"context"
)

type Repository interface {
	// SaveDraft stores d until shortly after d.ExpiresAt.
	SaveDraft(ctx context.Context, d *Draft) error

	// GetDraft returns nil, nil when the draft does not exist.
	GetDraft(ctx context.Context, draftID string) (*Draft, error)

	GetDraftBySlot(ctx context.Context, key SlotKey) (*Draft, error)

	SetDraftBySlot(ctx context.Context, key SlotKey, d *Draft) error

	// MarkDraftUsed reports false if the draft was already marked.
	MarkDraftUsed(ctx context.Context, draftID string) (bool, error)

	UnmarkDraftUsed(ctx context.Context, draftID string) error

	DeleteDraft(ctx context.Context, d *Draft) error
}
