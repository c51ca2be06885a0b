package challenge

import (
	"time"

	"wision/internal/models"
)

// Streak window sizes
const (
	StreakWindowDays = 30
	WeekDays         = 7
)

// Streak counts consecutive completed days ending today, or ending
// yesterday when today is not completed yet. It looks back at most
// StreakWindowDays days.
func Streak(completions map[string]models.ChallengeCompletion, today time.Time) int {
	anchor := today.UTC()
	if _, ok := completions[FormatDate(anchor)]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
		if _, ok := completions[FormatDate(anchor)]; !ok {
			return 0
		}
	}

	streak := 0
	for i := 0; i < StreakWindowDays; i++ {
		if _, ok := completions[FormatDate(anchor.AddDate(0, 0, -i))]; !ok {
			break
		}
		streak++
	}
	return streak
}

// WeeklyCompleted counts completed days among today and the six days before it
func WeeklyCompleted(completions map[string]models.ChallengeCompletion, today time.Time) int {
	count := 0
	for i := 0; i < WeekDays; i++ {
		if _, ok := completions[FormatDate(today.UTC().AddDate(0, 0, -i))]; ok {
			count++
		}
	}
	return count
}
