package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
)

const draftKeyPrefix = "draft:"

// DraftStore persists the open admin draft in Redis, keyed by the admin
// username. One key per admin enforces the one-form-at-a-time rule: saving
// any draft replaces whatever was open before.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftStore creates a Redis-backed draft store. Drafts expire after
// ttl of inactivity.
func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the open draft for an admin. A missing draft maps to
// ErrNotFound, which callers treat as "no form open".
func (s *DraftStore) Get(ctx context.Context, username string) (*Draft, error) {
	key := draftKeyPrefix + username

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("draft", username)
		}
		return nil, fmt.Errorf("redis get draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}

	return &draft, nil
}

// Save persists the draft, refreshing its TTL.
func (s *DraftStore) Save(ctx context.Context, username string, draft *Draft) error {
	key := draftKeyPrefix + username

	draft.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}

	return nil
}

// Delete discards the open draft.
func (s *DraftStore) Delete(ctx context.Context, username string) error {
	key := draftKeyPrefix + username

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}

	return nil
}
