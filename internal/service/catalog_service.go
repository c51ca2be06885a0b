package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"wision/internal/catalog"
	"wision/internal/models"
	"wision/internal/repository"
)

// CharacterFilter narrows catalog queries. Zero values match everything.
type CharacterFilter struct {
	Category   string
	Difficulty int
}

func (f CharacterFilter) matches(c models.Character) bool {
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Difficulty != 0 && c.Difficulty != f.Difficulty {
		return false
	}
	return true
}

// CatalogService serves the character catalog, seeding the store on first use
type CatalogService struct {
	repo    *repository.CharacterRepository
	data    *catalog.Data
	shuffle func(n int, swap func(i, j int))
}

// NewCatalogService creates a catalog service seeded from data
func NewCatalogService(repo *repository.CharacterRepository, data *catalog.Data) *CatalogService {
	return &CatalogService{
		repo:    repo,
		data:    data,
		shuffle: rand.Shuffle,
	}
}

// Tables exposes the synonym and radical tables
func (s *CatalogService) Tables() *catalog.Data {
	return s.data
}

// Initialize returns the stored catalog, seeding it if absent
func (s *CatalogService) Initialize(ctx context.Context) ([]models.Character, error) {
	characters, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if characters != nil {
		return characters, nil
	}

	characters, err = s.repo.SeedIfAbsent(ctx, s.data.Characters)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	return characters, nil
}

// List returns the catalog entries matching filter in catalog order
func (s *CatalogService) List(ctx context.Context, filter CharacterFilter) ([]models.Character, error) {
	characters, err := s.Initialize(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Character, 0, len(characters))
	for _, c := range characters {
		if filter.matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// RandomSample returns up to n distinct matching entries in random order.
// n below 1 is treated as 1.
func (s *CatalogService) RandomSample(ctx context.Context, n int, filter CharacterFilter) ([]models.Character, error) {
	if n < 1 {
		n = 1
	}

	matching, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.shuffle(len(matching), func(i, j int) {
		matching[i], matching[j] = matching[j], matching[i]
	})
	if n > len(matching) {
		n = len(matching)
	}
	return matching[:n], nil
}

// Lookup finds a character in the stored catalog
func (s *CatalogService) Lookup(ctx context.Context, character string) (models.Character, bool, error) {
	characters, err := s.Initialize(ctx)
	if err != nil {
		return models.Character{}, false, err
	}
	for _, c := range characters {
		if c.Character == character {
			return c, true, nil
		}
	}
	return models.Character{}, false, nil
}
