package models

import "time"

// Character categories used by the catalog
const (
	CategoryNature    = "nature"
	CategoryCelestial = "celestial"
	CategoryHuman     = "human"
	CategoryAnimal    = "animal"
	CategoryAbstract  = "abstract"
	CategoryObjects   = "objects"
	CategoryActions   = "actions"
)

// Character is a catalog entry: one Chinese character and its component radicals
type Character struct {
	Character     string   `json:"character" yaml:"character"`
	Pronunciation string   `json:"pronunciation" yaml:"pronunciation"`
	Meaning       string   `json:"meaning" yaml:"meaning"`
	Radicals      []string `json:"radicals" yaml:"radicals"`
	Story         string   `json:"story" yaml:"story"`
	Difficulty    int      `json:"difficulty" yaml:"difficulty"`
	Category      string   `json:"category" yaml:"category"`
}

// RadicalInfo pairs a radical with its meaning
type RadicalInfo struct {
	Character string `json:"character"`
	Meaning   string `json:"meaning"`
}

// DailyChallenge is the character chosen for one calendar date.
// Once persisted it is never rewritten.
type DailyChallenge struct {
	ID                 string        `json:"id"`
	Date               string        `json:"date"`
	Character          string        `json:"character"`
	Pronunciation      string        `json:"pronunciation"`
	Meaning            string        `json:"meaning"`
	AcceptableMeanings []string      `json:"acceptableMeanings"`
	Radicals           []RadicalInfo `json:"radicals"`
	Hint               string        `json:"hint"`
	Points             int           `json:"points"`
}

// ChallengeSubmission records a user's single answer for a date
type ChallengeSubmission struct {
	ChallengeID  string    `json:"challengeId"`
	Answer       string    `json:"answer"`
	IsCorrect    bool      `json:"isCorrect"`
	PointsEarned int       `json:"pointsEarned"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// SubmissionResult is returned to the caller after grading
type SubmissionResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	PointsEarned  int    `json:"pointsEarned"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}
