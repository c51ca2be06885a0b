package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"wision/internal/challenge"
	"wision/internal/models"
	"wision/internal/repository"
	"wision/internal/validation"
)

// ChallengeService generates and memoizes one challenge per UTC date
type ChallengeService struct {
	repo    *repository.ChallengeRepository
	catalog *CatalogService
	group   singleflight.Group
	now     func() time.Time
}

// NewChallengeService creates a new challenge service
func NewChallengeService(repo *repository.ChallengeRepository, catalog *CatalogService) *ChallengeService {
	return &ChallengeService{
		repo:    repo,
		catalog: catalog,
		now:     time.Now,
	}
}

// Today returns the current UTC calendar date
func (s *ChallengeService) Today() string {
	return challenge.FormatDate(s.now())
}

// GetTodaysChallenge returns the challenge for the current UTC date
func (s *ChallengeService) GetTodaysChallenge(ctx context.Context) (*models.DailyChallenge, error) {
	return s.GetChallenge(ctx, s.Today())
}

// GetChallenge returns the persisted challenge for date, generating and
// persisting it first if needed. Concurrent callers get the same value.
func (s *ChallengeService) GetChallenge(ctx context.Context, date string) (*models.DailyChallenge, error) {
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetChallenge(ctx, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	// Detached from ctx: waiters on the same date share this result
	v, err, _ := s.group.Do(date, func() (interface{}, error) {
		return s.generate(context.WithoutCancel(ctx), date)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DailyChallenge), nil
}

// FindChallenge returns the persisted challenge for date without generating one
func (s *ChallengeService) FindChallenge(ctx context.Context, date string) (*models.DailyChallenge, error) {
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetChallenge(ctx, date)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("challenge for %s: %w", date, ErrNotFound)
	}
	return existing, nil
}

func (s *ChallengeService) generate(ctx context.Context, date string) (*models.DailyChallenge, error) {
	characters, err := s.catalog.Initialize(ctx)
	if err != nil {
		return nil, err
	}

	generated, err := challenge.Build(s.catalog.Tables(), characters, date)
	if errors.Is(err, challenge.ErrEmptyCatalog) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if err != nil {
		return nil, err
	}

	return s.repo.CreateChallengeIfAbsent(ctx, generated)
}
