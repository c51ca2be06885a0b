package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"wision/internal/kvstore"
	"wision/internal/models"
)

// ProfileRepository handles user profile documents
type ProfileRepository struct {
	store kvstore.Store
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(store kvstore.Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// GetProfile retrieves a profile and its version, or nil if absent
func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, int64, error) {
	profile := &models.UserProfile{}
	version, err := kvstore.GetJSON(ctx, r.store, kvstore.ProfileKey(userID), profile)
	if absent(err) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, version, nil
}

// CreateProfile inserts a profile and reports false if one already existed
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) (bool, error) {
	inserted, err := kvstore.SetIfAbsentJSON(ctx, r.store, kvstore.ProfileKey(profile.UserID), profile, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create profile: %w", err)
	}
	return inserted, nil
}

// UpdateProfile writes profile if it is still at version. It returns
// ErrStale when another write got there first.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, profile *models.UserProfile, version int64) (int64, error) {
	next, err := kvstore.CompareAndSwapJSON(ctx, r.store, kvstore.ProfileKey(profile.UserID), profile, version)
	if err != nil {
		return 0, fmt.Errorf("failed to update profile: %w", err)
	}
	return next, nil
}

// ListProfiles returns every stored profile ordered by key
func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	entries, err := r.store.GetByPrefix(ctx, kvstore.ProfilePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]models.UserProfile, 0, len(entries))
	for _, e := range entries {
		var p models.UserProfile
		if err := json.Unmarshal(e.Value, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", e.Key, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
