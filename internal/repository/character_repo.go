package repository

import (
	"context"
	"fmt"

	"wision/internal/kvstore"
	"wision/internal/models"
)

// CharacterRepository stores the catalog list under a single key
type CharacterRepository struct {
	store kvstore.Store
}

// NewCharacterRepository creates a new character repository
func NewCharacterRepository(store kvstore.Store) *CharacterRepository {
	return &CharacterRepository{store: store}
}

// GetAll returns the stored catalog, or nil if it has not been seeded
func (r *CharacterRepository) GetAll(ctx context.Context) ([]models.Character, error) {
	var characters []models.Character
	_, err := kvstore.GetJSON(ctx, r.store, kvstore.CharactersKey, &characters)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get characters: %w", err)
	}
	return characters, nil
}

// SeedIfAbsent stores characters unless a catalog exists and returns the stored list
func (r *CharacterRepository) SeedIfAbsent(ctx context.Context, characters []models.Character) ([]models.Character, error) {
	var stored []models.Character
	if _, err := kvstore.SetIfAbsentJSON(ctx, r.store, kvstore.CharactersKey, characters, &stored); err != nil {
		return nil, fmt.Errorf("failed to seed characters: %w", err)
	}
	return stored, nil
}
