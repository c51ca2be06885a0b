package handlers

const (
	ErrInvalidJSON         = "Invalid JSON body"
	ErrAuthRequired        = "Authorization required"
	ErrInvalidToken        = "Invalid token"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests"
	ErrProfileNotFound     = "Profile not found"
	ErrChallengeNotFound   = "Challenge not found"
	ErrAlreadySubmitted    = "Challenge already submitted today"
	ErrServiceBusy         = "Service busy, please retry"

	// maxBodyBytes caps request bodies
	maxBodyBytes = 1 << 20
)
