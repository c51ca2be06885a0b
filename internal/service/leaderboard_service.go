package service

import (
	"context"
	"sort"
	"time"

	"wision/internal/models"
)

// Leaderboard orderings
const (
	LeaderboardScore       = "score"
	LeaderboardDiscoveries = "discoveries"
	LeaderboardStreak      = "streak"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardService aggregates rankings and progress from stored profiles
type LeaderboardService struct {
	ledger      *LedgerService
	discoveries *DiscoveryService
	now         func() time.Time
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(ledger *LedgerService, discoveries *DiscoveryService) *LeaderboardService {
	return &LeaderboardService{
		ledger:      ledger,
		discoveries: discoveries,
		now:         time.Now,
	}
}

// NormalizeLeaderboardType maps unknown orderings to score
func NormalizeLeaderboardType(kind string) string {
	switch kind {
	case LeaderboardDiscoveries, LeaderboardStreak:
		return kind
	default:
		return LeaderboardScore
	}
}

// GetLeaderboard ranks every profile by the given ordering. Ties keep
// store order.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, kind string, limit int) ([]models.LeaderboardEntry, error) {
	kind = NormalizeLeaderboardType(kind)
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	profiles, err := s.ledger.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	var key func(p *models.UserProfile) int
	switch kind {
	case LeaderboardDiscoveries:
		key = func(p *models.UserProfile) int { return len(p.LearnedCharacters) }
	case LeaderboardStreak:
		key = func(p *models.UserProfile) int { return p.CurrentStreak }
	default:
		key = func(p *models.UserProfile) int { return p.Score }
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return key(&profiles[i]) > key(&profiles[j])
	})

	if len(profiles) > limit {
		profiles = profiles[:limit]
	}

	entries := make([]models.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, models.LeaderboardEntry{
			Rank:        i + 1,
			Name:        p.Name,
			Score:       p.Score,
			Discoveries: len(p.LearnedCharacters),
			Level:       models.Level(p.Score),
			Streak:      p.CurrentStreak,
		})
	}
	return entries, nil
}

// GetProgress summarizes a user's learning. A missing profile counts as zero.
func (s *LeaderboardService) GetProgress(ctx context.Context, userID string) (*models.Progress, error) {
	profile, _, err := s.ledger.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &models.UserProfile{}
	}

	log, err := s.discoveries.ListDiscoveries(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekAgo := s.now().Add(-7 * 24 * time.Hour)
	weekly := 0
	for _, d := range log {
		if d.DiscoveredAt.After(weekAgo) {
			weekly++
		}
	}

	return &models.Progress{
		TotalCharacters:   len(profile.LearnedCharacters),
		TotalDiscoveries:  len(log),
		CurrentLevel:      models.Level(profile.Score),
		PointsToNextLevel: models.PointsToNextLevel(profile.Score),
		WeeklyActivity:    weekly,
		TotalScore:        profile.Score,
	}, nil
}
