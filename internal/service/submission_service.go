package service

import (
	"context"
	"fmt"
	"time"

	"wision/internal/challenge"
	"wision/internal/grading"
	"wision/internal/models"
	"wision/internal/repository"
	"wision/internal/validation"
)

// SubmitInput is one answer to a daily challenge
type SubmitInput struct {
	ChallengeID string
	Answer      string
	Date        string
}

// SubmissionService grades answers, one per user per date
type SubmissionService struct {
	repo       *repository.ChallengeRepository
	challenges *ChallengeService
	ledger     *LedgerService
	now        func() time.Time
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(repo *repository.ChallengeRepository, challenges *ChallengeService, ledger *LedgerService) *SubmissionService {
	return &SubmissionService{
		repo:       repo,
		challenges: challenges,
		ledger:     ledger,
		now:        time.Now,
	}
}

// Submit grades an answer and credits the user. A second submission for
// the same date fails with ErrAlreadySubmitted and changes nothing.
func (s *SubmissionService) Submit(ctx context.Context, userID string, in SubmitInput) (*models.SubmissionResult, error) {
	if in.Date == "" {
		in.Date = s.challenges.Today()
	}
	if err := validation.ValidateAnswer(in.Answer); err != nil {
		return nil, err
	}

	ch, err := s.challenges.FindChallenge(ctx, in.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetSubmission(ctx, userID, in.Date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadySubmitted
	}

	isCorrect := grading.IsCorrect(in.Answer, ch.AcceptableMeanings)
	points := grading.SubmissionPoints(isCorrect)
	now := s.now().UTC()

	inserted, err := s.repo.CreateSubmission(ctx, userID, in.Date, &models.ChallengeSubmission{
		ChallengeID:  in.ChallengeID,
		Answer:       in.Answer,
		IsCorrect:    isCorrect,
		PointsEarned: points,
		SubmittedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadySubmitted
	}

	_, err = s.ledger.RecordChallenge(ctx, userID, in.Date, models.ChallengeCompletion{
		Character:    ch.Character,
		Answer:       in.Answer,
		IsCorrect:    isCorrect,
		PointsEarned: points,
		CompletedAt:  now,
	})
	if err != nil {
		// An uncredited submission is removed so the user can submit again
		if derr := s.repo.DeleteSubmission(context.WithoutCancel(ctx), userID, in.Date); derr != nil {
			return nil, fmt.Errorf("failed to credit submission: %w (rollback: %v)", err, derr)
		}
		return nil, fmt.Errorf("failed to credit submission: %w", err)
	}

	return &models.SubmissionResult{
		IsCorrect:     isCorrect,
		PointsEarned:  points,
		CorrectAnswer: ch.Meaning,
		Explanation:   challenge.Explanation(ch),
	}, nil
}
