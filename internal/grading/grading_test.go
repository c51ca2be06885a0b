package grading

import "testing"

func TestIsCorrect(t *testing.T) {
	acceptable := []string{"rest", "relax"}

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{name: "exact match", answer: "rest", want: true},
		{name: "synonym", answer: "relax", want: true},
		{name: "uppercase", answer: "REST", want: true},
		{name: "surrounding whitespace", answer: "  Relax\t", want: true},
		{name: "wrong answer", answer: "sleep", want: false},
		{name: "prefix only", answer: "res", want: false},
		{name: "inner whitespace", answer: "re st", want: false},
		{name: "empty", answer: "", want: false},
		{name: "whitespace only", answer: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorrect(tt.answer, acceptable); got != tt.want {
				t.Errorf("IsCorrect(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestSubmissionPoints(t *testing.T) {
	if got := SubmissionPoints(true); got != 25 {
		t.Errorf("SubmissionPoints(true) = %d, want 25", got)
	}
	if got := SubmissionPoints(false); got != 5 {
		t.Errorf("SubmissionPoints(false) = %d, want 5", got)
	}
}

func TestDiscoveryPoints(t *testing.T) {
	tests := []struct {
		radicals []string
		want     int
	}{
		{radicals: nil, want: 0},
		{radicals: []string{"木"}, want: 10},
		{radicals: []string{"木", "木", "木"}, want: 30},
	}

	for _, tt := range tests {
		if got := DiscoveryPoints(tt.radicals); got != tt.want {
			t.Errorf("DiscoveryPoints(%v) = %d, want %d", tt.radicals, got, tt.want)
		}
	}
}

func TestChallengePoints(t *testing.T) {
	if got := ChallengePoints(3); got != 30 {
		t.Errorf("ChallengePoints(3) = %d, want 30", got)
	}
}
