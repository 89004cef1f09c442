package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fittrack/internal/kvstore"
)

const consumedPrefix = "reset_used:"

// ConsumedTokens records reset-token ids that have already been redeemed.
// Entries carry the token's expiry so stale ids can be told apart.
type ConsumedTokens struct {
	store kvstore.Store
}

// NewConsumedTokens creates a tracker over store.
func NewConsumedTokens(store kvstore.Store) *ConsumedTokens {
	return &ConsumedTokens{store: store}
}

// IsConsumed reports whether id has been redeemed.
func (c *ConsumedTokens) IsConsumed(ctx context.Context, id string) (bool, error) {
	_, err := c.store.Get(ctx, consumedPrefix+id)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check reset token %s: %w", id, err)
	}
	return true, nil
}

// Consume marks id as redeemed.
func (c *ConsumedTokens) Consume(ctx context.Context, id string, expiresAt time.Time) error {
	if err := c.store.Set(ctx, consumedPrefix+id, expiresAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to consume reset token %s: %w", id, err)
	}
	return nil
}
