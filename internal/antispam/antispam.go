// Package antispam holds the two submission checks: the per-site
// question/answer challenge, and an optional Gemini score of the body.
package antispam

import (
	"math/rand"
	"strings"
)

// CheckAnswer verifies a visitor's answer to a challenge question.
// Comparison is case-insensitive and whitespace-tolerant.
func CheckAnswer(questions map[string]string, question, answer string) bool {
	expected, ok := questions[question]
	if !ok {
		return false
	}
	return normalize(answer) == normalize(expected)
}

// PickQuestion returns one random challenge question, or "" when the
// list is empty.
func PickQuestion(questions map[string]string) string {
	if len(questions) == 0 {
		return ""
	}
	n := rand.Intn(len(questions))
	for q := range questions {
		if n == 0 {
			return q
		}
		n--
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
