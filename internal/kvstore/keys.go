package kvstore

import "strings"

// Key prefixes of the persisted layout
const (
	ProfilePrefix    = "user_profile:"
	CharactersKey    = "characters_database"
	ChallengePrefix  = "daily_challenge:"
	SubmissionPrefix = "challenge_submission:"
	DiscoveryPrefix  = "discoveries:"
	AccountPrefix    = "user_account:"
)

func ProfileKey(userID string) string {
	return ProfilePrefix + userID
}

func ChallengeKey(date string) string {
	return ChallengePrefix + date
}

func SubmissionKey(userID, date string) string {
	return SubmissionPrefix + userID + ":" + date
}

func DiscoveryKey(userID string) string {
	return DiscoveryPrefix + userID
}

// AccountKey is case-insensitive in the email
func AccountKey(email string) string {
	return AccountPrefix + strings.ToLower(strings.TrimSpace(email))
}
