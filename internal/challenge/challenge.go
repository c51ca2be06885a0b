package challenge

import (
	"errors"
	"fmt"
	"math"
	"time"

	"wision/internal/grading"
	"wision/internal/models"
)

// DateLayout is the calendar date format used in keys and requests
const DateLayout = "2006-01-02"

// Linear congruential constants of the date seed
const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280
)

var ErrEmptyCatalog = errors.New("catalog is empty")

// Tables resolves synonyms and radical meanings
type Tables interface {
	AlternateMeanings(meaning string) []string
	RadicalMeaning(radical string) string
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// FormatDate renders t's UTC calendar date
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ID is the challenge identifier for a date
func ID(date string) string {
	return "daily-" + date
}

// SelectIndex picks the catalog index for a date. The seed arithmetic is
// IEEE-754 double precision, including its rounding of the product.
func SelectIndex(day time.Time, n int) int {
	if n <= 0 {
		return -1
	}
	// The int64 product is exact; the conversion applies the single rounding.
	product := float64(day.UnixMilli() * multiplier)
	seed := math.Mod(product+increment, modulus)
	index := int(math.Floor(seed / modulus * float64(n)))
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	return index
}

// Build generates the challenge for date from the catalog
func Build(tables Tables, characters []models.Character, date string) (*models.DailyChallenge, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if len(characters) == 0 {
		return nil, ErrEmptyCatalog
	}

	selected := characters[SelectIndex(day, len(characters))]

	acceptable := append([]string{selected.Meaning}, tables.AlternateMeanings(selected.Meaning)...)

	radicals := make([]models.RadicalInfo, 0, len(selected.Radicals))
	for _, r := range selected.Radicals {
		radicals = append(radicals, models.RadicalInfo{
			Character: r,
			Meaning:   tables.RadicalMeaning(r),
		})
	}

	return &models.DailyChallenge{
		ID:                 ID(date),
		Date:               date,
		Character:          selected.Character,
		Pronunciation:      selected.Pronunciation,
		Meaning:            selected.Meaning,
		AcceptableMeanings: acceptable,
		Radicals:           radicals,
		Hint:               selected.Story,
		Points:             grading.ChallengePoints(selected.Difficulty),
	}, nil
}

// Explanation is the sentence returned with a graded answer
func Explanation(ch *models.DailyChallenge) string {
	return fmt.Sprintf("%s (%s) means \"%s\"", ch.Character, ch.Pronunciation, ch.Meaning)
}
