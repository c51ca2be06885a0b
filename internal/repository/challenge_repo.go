package repository

import (
	"context"
	"fmt"

	"wision/internal/kvstore"
	"wision/internal/models"
)

// ChallengeRepository handles daily challenges and the submissions against them
type ChallengeRepository struct {
	store kvstore.Store
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(store kvstore.Store) *ChallengeRepository {
	return &ChallengeRepository{store: store}
}

// GetChallenge retrieves the persisted challenge for date, or nil
func (r *ChallengeRepository) GetChallenge(ctx context.Context, date string) (*models.DailyChallenge, error) {
	challenge := &models.DailyChallenge{}
	_, err := kvstore.GetJSON(ctx, r.store, kvstore.ChallengeKey(date), challenge)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return challenge, nil
}

// CreateChallengeIfAbsent persists challenge unless one exists for its date.
// The returned challenge is the one stored, which may be another writer's.
func (r *ChallengeRepository) CreateChallengeIfAbsent(ctx context.Context, challenge *models.DailyChallenge) (*models.DailyChallenge, error) {
	stored := &models.DailyChallenge{}
	if _, err := kvstore.SetIfAbsentJSON(ctx, r.store, kvstore.ChallengeKey(challenge.Date), challenge, stored); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return stored, nil
}

// GetSubmission retrieves a user's submission for date, or nil
func (r *ChallengeRepository) GetSubmission(ctx context.Context, userID, date string) (*models.ChallengeSubmission, error) {
	submission := &models.ChallengeSubmission{}
	_, err := kvstore.GetJSON(ctx, r.store, kvstore.SubmissionKey(userID, date), submission)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

// CreateSubmission records a submission and reports false if one already existed
func (r *ChallengeRepository) CreateSubmission(ctx context.Context, userID, date string, submission *models.ChallengeSubmission) (bool, error) {
	inserted, err := kvstore.SetIfAbsentJSON(ctx, r.store, kvstore.SubmissionKey(userID, date), submission, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create submission: %w", err)
	}
	return inserted, nil
}

// DeleteSubmission removes a user's submission for date
func (r *ChallengeRepository) DeleteSubmission(ctx context.Context, userID, date string) error {
	if err := r.store.Delete(ctx, kvstore.SubmissionKey(userID, date)); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}
