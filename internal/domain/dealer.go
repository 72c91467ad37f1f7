package domain

import (
	"strconv"
	"strings"
)

// Dealer is passed through from the dealer store untouched.
type Dealer map[string]any

// NormalizeDealerID returns the trimmed id, or ErrBadRequest when the id is
// missing or not a positive integer.
func NormalizeDealerID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrBadRequest
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return "", ErrBadRequest
	}
	return strconv.FormatInt(n, 10), nil
}
