package antispam

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	scorePattern   = regexp.MustCompile(`\$([0-9]+(?:\.[0-9]+)?)\$`)
	numberRegex    = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	ErrParseFailed = errors.New("parse_failed")
)

// ParseScore extracts a 0-100 spam score from model output. It first
// tries the strict $<number>$ format and falls back to the first number
// in the text. Out-of-range values are clamped.
func ParseScore(text string) (float64, error) {
	var raw string
	if m := scorePattern.FindStringSubmatch(text); len(m) >= 2 {
		raw = m[1]
	} else if m := numberRegex.FindString(text); m != "" {
		raw = m
	} else {
		return 0, fmt.Errorf("%w: no score found", ErrParseFailed)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v, nil
}
