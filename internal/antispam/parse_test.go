package antispam

import (
	"errors"
	"testing"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    float64
		wantErr bool
	}{
		{"strict format", "$85$", 85, false},
		{"strict with prose", "The score is $12.5$ out of 100.", 12.5, false},
		{"fallback first number", "I would rate this 40 out of 100", 40, false},
		{"fallback decimal", "score: 7.25", 7.25, false},
		{"strict wins over earlier number", "1 result: $90$", 90, false},
		{"clamped high", "$150$", 100, false},
		{"no number", "unable to assess", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrParseFailed) {
					t.Fatalf("ParseScore(%q) error = %v, want ErrParseFailed", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore(%q) unexpected error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseScore(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
