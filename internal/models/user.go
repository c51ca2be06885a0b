package models

import "time"

// Account holds the credentials behind a user id
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserProfile is the per-user document holding the score ledger.
// Score and DailyChallenges are only written by the ledger.
type UserProfile struct {
	UserID            string                         `json:"userId"`
	Name              string                         `json:"name"`
	Age               int                            `json:"age"`
	Interests         []string                       `json:"interests"`
	ProficiencyLevel  int                            `json:"proficiencyLevel"`
	KnownCharacters   int                            `json:"knownCharacters"`
	Score             int                            `json:"score"`
	LearnedCharacters []LearnedCharacter             `json:"learnedCharacters"`
	DailyChallenges   map[string]ChallengeCompletion `json:"dailyChallenges,omitempty"`
	CurrentStreak     int                            `json:"currentStreak"`
	CreatedAt         time.Time                      `json:"createdAt"`
	LastActive        time.Time                      `json:"lastActive"`
	UpdatedAt         *time.Time                     `json:"updatedAt,omitempty"`
}

// LearnedCharacter is an entry in a profile's learned list
type LearnedCharacter struct {
	Character     string    `json:"character"`
	Pronunciation string    `json:"pronunciation"`
	Meaning       string    `json:"meaning"`
	DateLearned   time.Time `json:"datelearned"`
	Difficulty    int       `json:"difficulty"`
}

// ChallengeCompletion is the profile's record of one graded daily challenge
type ChallengeCompletion struct {
	Character    string    `json:"character"`
	Answer       string    `json:"answer"`
	IsCorrect    bool      `json:"isCorrect"`
	PointsEarned int       `json:"pointsEarned"`
	CompletedAt  time.Time `json:"completedAt"`
}

// HasLearned checks whether character is already in the learned list
func (p *UserProfile) HasLearned(character string) bool {
	for _, lc := range p.LearnedCharacters {
		if lc.Character == character {
			return true
		}
	}
	return false
}

// Level is floor(score/100)+1
func Level(score int) int {
	if score < 0 {
		return 1
	}
	return score/100 + 1
}

// PointsToNextLevel is the distance from score to the next level boundary
func PointsToNextLevel(score int) int {
	return Level(score)*100 - score
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Discoveries int    `json:"discoveries"`
	Level       int    `json:"level"`
	Streak      int    `json:"streak"`
}

// Progress summarizes a user's learning analytics
type Progress struct {
	TotalCharacters   int `json:"totalCharacters"`
	TotalDiscoveries  int `json:"totalDiscoveries"`
	CurrentLevel      int `json:"currentLevel"`
	PointsToNextLevel int `json:"pointsToNextLevel"`
	WeeklyActivity    int `json:"weeklyActivity"`
	TotalScore        int `json:"totalScore"`
}
