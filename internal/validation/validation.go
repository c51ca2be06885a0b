package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Limits on request fields
const (
	MaxAnswerLength = 100
	MaxRadicals     = 10
	MaxMethodLength = 32
	MaxNameLength   = 50
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxNameLength)}
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date
func ValidateDate(date string) error {
	if date == "" {
		return ValidationError{Field: "challengeDate", Message: "date is required"}
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ValidationError{Field: "challengeDate", Message: "date must be YYYY-MM-DD"}
	}
	return nil
}

// ValidateAnswer checks a challenge answer before grading
func ValidateAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ValidationError{Field: "answer", Message: "answer is required"}
	}
	if utf8.RuneCountInString(answer) > MaxAnswerLength {
		return ValidationError{Field: "answer", Message: fmt.Sprintf("answer must be at most %d characters", MaxAnswerLength)}
	}
	return nil
}

// ValidateDiscovery checks a discovery request
func ValidateDiscovery(character string, radicals []string, method string) error {
	if strings.TrimSpace(character) == "" {
		return ValidationError{Field: "character", Message: "character is required"}
	}
	if len(radicals) > MaxRadicals {
		return ValidationError{Field: "radicals", Message: fmt.Sprintf("at most %d radicals", MaxRadicals)}
	}
	for _, r := range radicals {
		if strings.TrimSpace(r) == "" {
			return ValidationError{Field: "radicals", Message: "radicals must not be empty"}
		}
	}
	if len(method) > MaxMethodLength {
		return ValidationError{Field: "method", Message: fmt.Sprintf("method must be at most %d characters", MaxMethodLength)}
	}
	return nil
}
