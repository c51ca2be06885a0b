package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"wision/internal/challenge"
	"wision/internal/models"
	"wision/internal/repository"
)

const (
	// maxUpdateAttempts bounds the read-modify-write retries on a profile
	maxUpdateAttempts = 5

	retryBaseDelay = 2 * time.Millisecond
	retryMaxDelay  = 50 * time.Millisecond
)

// LedgerService owns user profiles and is the only writer of score
type LedgerService struct {
	repo *repository.ProfileRepository
	now  func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(repo *repository.ProfileRepository) *LedgerService {
	return &LedgerService{repo: repo, now: time.Now}
}

// GetProfile retrieves a user's profile
func (s *LedgerService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, _, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	return profile, nil
}

// CreateProfile stores a new profile with server-owned fields reset
func (s *LedgerService) CreateProfile(ctx context.Context, userID string, seed models.UserProfile) (*models.UserProfile, error) {
	now := s.now().UTC()

	profile := seed
	profile.UserID = userID
	profile.Score = 0
	profile.CurrentStreak = 0
	profile.DailyChallenges = nil
	profile.CreatedAt = now
	profile.LastActive = now
	profile.UpdatedAt = nil
	if profile.Interests == nil {
		profile.Interests = []string{}
	}
	if profile.LearnedCharacters == nil {
		profile.LearnedCharacters = []models.LearnedCharacter{}
	}

	inserted, err := s.repo.CreateProfile(ctx, &profile)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("profile %s already exists: %w", userID, ErrConflict)
	}
	return &profile, nil
}

// ApplyScoreDelta adds delta to the user's score and applies mutate in the
// same write. It retries on concurrent modification until ctx is done.
func (s *LedgerService) ApplyScoreDelta(ctx context.Context, userID string, delta int, mutate func(p *models.UserProfile)) (*models.UserProfile, error) {
	return s.updateUntil(ctx, userID, 0, func(p *models.UserProfile) {
		p.Score += delta
		if mutate != nil {
			mutate(p)
		}
	})
}

// RecordChallenge credits a graded daily challenge and records it on the profile
func (s *LedgerService) RecordChallenge(ctx context.Context, userID, date string, completion models.ChallengeCompletion) (*models.UserProfile, error) {
	return s.ApplyScoreDelta(ctx, userID, completion.PointsEarned, func(p *models.UserProfile) {
		if p.DailyChallenges == nil {
			p.DailyChallenges = make(map[string]models.ChallengeCompletion)
		}
		p.DailyChallenges[date] = completion
		p.CurrentStreak = challenge.Streak(p.DailyChallenges, s.now())
	})
}

// ReplaceProfile overwrites the client-editable fields of a profile.
// Score, daily challenge history, streak, id and creation time are kept.
func (s *LedgerService) ReplaceProfile(ctx context.Context, userID string, incoming models.UserProfile) (*models.UserProfile, error) {
	return s.update(ctx, userID, func(p *models.UserProfile) {
		p.Name = incoming.Name
		p.Age = incoming.Age
		p.Interests = incoming.Interests
		if p.Interests == nil {
			p.Interests = []string{}
		}
		p.ProficiencyLevel = incoming.ProficiencyLevel
		p.KnownCharacters = incoming.KnownCharacters
		if incoming.LearnedCharacters != nil {
			p.LearnedCharacters = incoming.LearnedCharacters
		}
	})
}

// Touch updates the profile's last active time
func (s *LedgerService) Touch(ctx context.Context, userID string) error {
	_, err := s.update(ctx, userID, func(p *models.UserProfile) {
		p.LastActive = s.now().UTC()
	})
	return err
}

// ListProfiles returns every profile
func (s *LedgerService) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	return s.repo.ListProfiles(ctx)
}

// update runs a compare-and-swap loop over the user's profile
func (s *LedgerService) update(ctx context.Context, userID string, fn func(p *models.UserProfile)) (*models.UserProfile, error) {
	return s.updateUntil(ctx, userID, maxUpdateAttempts, fn)
}

// updateUntil is update with a custom attempt bound. Zero retries until ctx is done.
func (s *LedgerService) updateUntil(ctx context.Context, userID string, attempts int, fn func(p *models.UserProfile)) (*models.UserProfile, error) {
	for attempt := 0; attempts == 0 || attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		profile, version, err := s.repo.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}

		fn(profile)
		now := s.now().UTC()
		profile.UpdatedAt = &now

		_, err = s.repo.UpdateProfile(ctx, profile, version)
		if errors.Is(err, repository.ErrStale) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return profile, nil
	}
	return nil, fmt.Errorf("profile %s: %w", userID, ErrConflict)
}

// backoff sleeps a jittered, growing delay before retry attempt
func backoff(ctx context.Context, attempt int) error {
	delay := retryBaseDelay << min(attempt-1, 5)
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	delay = delay/2 + rand.N(delay/2+1)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
