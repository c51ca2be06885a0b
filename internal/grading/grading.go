package grading

import "strings"

// Point values
const (
	CorrectPoints       = 25
	IncorrectPoints     = 5
	PointsPerRadical    = 10
	PointsPerDifficulty = 10
)

// Normalize trims surrounding whitespace and lowercases
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsCorrect reports whether answer matches any acceptable meaning after normalization
func IsCorrect(answer string, acceptable []string) bool {
	normalized := Normalize(answer)
	if normalized == "" {
		return false
	}
	for _, meaning := range acceptable {
		if Normalize(meaning) == normalized {
			return true
		}
	}
	return false
}

// SubmissionPoints is the reward for a graded daily challenge
func SubmissionPoints(correct bool) int {
	if correct {
		return CorrectPoints
	}
	return IncorrectPoints
}

// DiscoveryPoints is the reward for a new discovery made from radicals
func DiscoveryPoints(radicals []string) int {
	return len(radicals) * PointsPerRadical
}

// ChallengePoints is the advertised value of a challenge for a character
func ChallengePoints(difficulty int) int {
	return difficulty * PointsPerDifficulty
}
