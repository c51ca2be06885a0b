package repository

import (
	"context"
	"fmt"

	"wision/internal/kvstore"
	"wision/internal/models"
)

// DiscoveryRepository handles per-user discovery logs
type DiscoveryRepository struct {
	store kvstore.Store
}

// NewDiscoveryRepository creates a new discovery repository
func NewDiscoveryRepository(store kvstore.Store) *DiscoveryRepository {
	return &DiscoveryRepository{store: store}
}

// GetDiscoveries returns the user's log and its version. An absent log is
// empty with version 0.
func (r *DiscoveryRepository) GetDiscoveries(ctx context.Context, userID string) ([]models.Discovery, int64, error) {
	var log []models.Discovery
	version, err := kvstore.GetJSON(ctx, r.store, kvstore.DiscoveryKey(userID), &log)
	if absent(err) {
		return []models.Discovery{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get discoveries: %w", err)
	}
	if log == nil {
		log = []models.Discovery{}
	}
	return log, version, nil
}

// SaveDiscoveries writes log if it is still at version (0 meaning not yet
// created). It returns ErrStale when another write got there first.
func (r *DiscoveryRepository) SaveDiscoveries(ctx context.Context, userID string, log []models.Discovery, version int64) error {
	key := kvstore.DiscoveryKey(userID)

	if version == 0 {
		inserted, err := kvstore.SetIfAbsentJSON(ctx, r.store, key, log, nil)
		if err != nil {
			return fmt.Errorf("failed to create discoveries: %w", err)
		}
		if !inserted {
			return ErrStale
		}
		return nil
	}

	if _, err := kvstore.CompareAndSwapJSON(ctx, r.store, key, log, version); err != nil {
		return fmt.Errorf("failed to save discoveries: %w", err)
	}
	return nil
}
