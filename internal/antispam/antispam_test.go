package antispam

import "testing"

func TestCheckAnswer(t *testing.T) {
	questions := map[string]string{
		"How much is one plus one?":    "2",
		"What is the color of the sky": "the sky is blue",
	}

	tests := []struct {
		name     string
		question string
		answer   string
		want     bool
	}{
		{"exact match", "How much is one plus one?", "2", true},
		{"surrounding whitespace", "How much is one plus one?", "  2 ", true},
		{"case folded", "What is the color of the sky", "The Sky Is Blue", true},
		{"inner whitespace collapsed", "What is the color of the sky", "the  sky\tis   blue", true},
		{"wrong answer", "How much is one plus one?", "3", false},
		{"empty answer", "How much is one plus one?", "", false},
		{"unknown question", "Who goes there?", "me", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckAnswer(questions, tt.question, tt.answer); got != tt.want {
				t.Errorf("CheckAnswer(%q, %q) = %v, want %v", tt.question, tt.answer, got, tt.want)
			}
		})
	}
}

func TestPickQuestion(t *testing.T) {
	questions := map[string]string{
		"a": "1",
		"b": "2",
		"c": "3",
	}
	for i := 0; i < 20; i++ {
		q := PickQuestion(questions)
		if _, ok := questions[q]; !ok {
			t.Fatalf("picked unknown question %q", q)
		}
	}
}

func TestPickQuestion_Empty(t *testing.T) {
	if q := PickQuestion(nil); q != "" {
		t.Errorf("PickQuestion(nil) = %q, want empty", q)
	}
}
