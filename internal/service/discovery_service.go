package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wision/internal/grading"
	"wision/internal/models"
	"wision/internal/repository"
	"wision/internal/validation"
)

// DiscoveryInput is a character found by combining radicals
type DiscoveryInput struct {
	Character string
	Radicals  []string
	Method    string
}

// DiscoveryService records creative-lab discoveries, once per character per user
type DiscoveryService struct {
	repo    *repository.DiscoveryRepository
	catalog *CatalogService
	ledger  *LedgerService
	now     func() time.Time
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(repo *repository.DiscoveryRepository, catalog *CatalogService, ledger *LedgerService) *DiscoveryService {
	return &DiscoveryService{
		repo:    repo,
		catalog: catalog,
		ledger:  ledger,
		now:     time.Now,
	}
}

// RecordDiscovery appends a discovery and credits points if the character
// is new to the user. Repeats earn nothing.
func (s *DiscoveryService) RecordDiscovery(ctx context.Context, userID string, in DiscoveryInput) (*models.DiscoveryResult, error) {
	if in.Method == "" {
		in.Method = models.MethodCreativeLab
	}
	if err := validation.ValidateDiscovery(in.Character, in.Radicals, in.Method); err != nil {
		return nil, err
	}
	if _, err := s.ledger.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	points := grading.DiscoveryPoints(in.Radicals)

	var total int
	var isNew bool
	for attempt := 0; ; attempt++ {
		if attempt == maxUpdateAttempts {
			return nil, fmt.Errorf("discoveries for %s: %w", userID, ErrConflict)
		}
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		log, version, err := s.repo.GetDiscoveries(ctx, userID)
		if err != nil {
			return nil, err
		}
		if models.FindDiscovery(log, in.Character) >= 0 {
			total = len(log)
			break
		}

		log = append(log, models.Discovery{
			Character:    in.Character,
			Radicals:     append([]string(nil), in.Radicals...),
			Method:       in.Method,
			DiscoveredAt: s.now().UTC(),
			Points:       points,
		})
		err = s.repo.SaveDiscoveries(ctx, userID, log, version)
		if errors.Is(err, repository.ErrStale) {
			continue
		}
		if err != nil {
			return nil, err
		}
		isNew = true
		total = len(log)
		break
	}

	if !isNew {
		return &models.DiscoveryResult{IsNew: false, PointsEarned: 0, TotalDiscoveries: total}, nil
	}

	entry, found, err := s.catalog.Lookup(ctx, in.Character)
	if err != nil {
		return nil, err
	}
	_, err = s.ledger.ApplyScoreDelta(ctx, userID, points, func(p *models.UserProfile) {
		if p.HasLearned(in.Character) {
			return
		}
		learned := models.LearnedCharacter{
			Character:   in.Character,
			DateLearned: s.now().UTC(),
		}
		if found {
			learned.Pronunciation = entry.Pronunciation
			learned.Meaning = entry.Meaning
			learned.Difficulty = entry.Difficulty
		}
		p.LearnedCharacters = append(p.LearnedCharacters, learned)
	})
	if err != nil {
		if derr := s.forget(context.WithoutCancel(ctx), userID, in.Character); derr != nil {
			return nil, fmt.Errorf("failed to credit discovery: %w (rollback: %v)", err, derr)
		}
		return nil, fmt.Errorf("failed to credit discovery: %w", err)
	}

	return &models.DiscoveryResult{IsNew: true, PointsEarned: points, TotalDiscoveries: total}, nil
}

// ListDiscoveries returns the user's discovery log in insertion order
func (s *DiscoveryService) ListDiscoveries(ctx context.Context, userID string) ([]models.Discovery, error) {
	log, _, err := s.repo.GetDiscoveries(ctx, userID)
	return log, err
}

// forget removes an uncredited discovery of character from the user's log
func (s *DiscoveryService) forget(ctx context.Context, userID, character string) error {
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return err
			}
		}

		log, version, err := s.repo.GetDiscoveries(ctx, userID)
		if err != nil {
			return err
		}
		i := models.FindDiscovery(log, character)
		if i < 0 {
			return nil
		}

		log = append(log[:i], log[i+1:]...)
		err = s.repo.SaveDiscoveries(ctx, userID, log, version)
		if errors.Is(err, repository.ErrStale) {
			continue
		}
		return err
	}
}
