package similarity

import (
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		text     string
		maxScore float64 // highest acceptable score
		minScore float64 // lowest acceptable score
	}{
		{
			name:     "Identical strings",
			pattern:  "Inception",
			text:     "Inception",
			maxScore: 0,
		},
		{
			name:     "Case insensitive",
			pattern:  "the matrix",
			text:     "The Matrix",
			maxScore: 0,
		},
		{
			name:     "Prefix of title",
			pattern:  "incep",
			text:     "Inception",
			maxScore: 0,
		},
		{
			name:     "Word inside title",
			pattern:  "matrix",
			text:     "The Matrix",
			maxScore: 0.05,
		},
		{
			name:     "Transposed letters",
			pattern:  "inceptoin",
			text:     "Inception",
			maxScore: 0.35,
		},
		{
			name:     "Accents are transliterated",
			pattern:  "amelie",
			text:     "Amélie",
			maxScore: 0,
		},
		{
			name:     "Ampersand vs and",
			pattern:  "law and order",
			text:     "Law & Order",
			maxScore: 0,
		},
		{
			name:     "Unrelated title",
			pattern:  "inception",
			text:     "Paddington",
			minScore: 0.35,
			maxScore: 1,
		},
		{
			name:     "Empty text",
			pattern:  "heat",
			text:     "",
			minScore: 1,
			maxScore: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(tt.pattern, tt.text)
			t.Logf("Score(%q, %q) = %.3f", tt.pattern, tt.text, score)

			if score > tt.maxScore {
				t.Errorf("Expected score <= %.2f, got %.3f", tt.maxScore, score)
			}
			if score < tt.minScore {
				t.Errorf("Expected score >= %.2f, got %.3f", tt.minScore, score)
			}
		})
	}
}

func TestScore_EarlierMatchScoresBetter(t *testing.T) {
	early := Score("heat", "Heat Wave")
	late := Score("heat", "The Long Hot Summer of Heat")
	if early >= late {
		t.Fatalf("expected match at start to score better: early=%.3f late=%.3f", early, late)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Spider-Man: No Way Home", "spider man no way home"},
		{"  The.Matrix  ", "the matrix"},
		{"Léon", "leon"},
		{"Tom & Jerry", "tom and jerry"},
		{"Ocean's Eleven", "oceans eleven"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
