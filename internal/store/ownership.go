package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// OwnershipKey is the kv key holding the owned collectible IDs.
const OwnershipKey = "collection.owned"

// LoadOwnership returns the persisted owned IDs. A missing key means nothing
// is owned yet.
func (s *Store) LoadOwnership(ctx context.Context) ([]string, error) {
	raw, err := s.Get(ctx, OwnershipKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return ids, nil
}

// SaveOwnership replaces the persisted owned IDs.
func (s *Store) SaveOwnership(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err := s.Set(ctx, OwnershipKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}
