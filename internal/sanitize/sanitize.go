// Package sanitize rejects HTML-active input in free-text fields.
//
// The rule is strict: a field passes only when stripping markup leaves it
// byte-identical. Anything that tokenizes as a tag, comment, doctype, or
// character entity means the input was HTML-active and the field is rejected
// rather than silently rewritten.
package sanitize

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrMarkup is returned when stripping changed the input.
	ErrMarkup = errors.New("input contains HTML markup")

	// ErrBlank is returned when a field is empty after trimming.
	ErrBlank = errors.New("field is blank")

	// ErrTooLong is returned when a field exceeds its byte bound.
	ErrTooLong = errors.New("field exceeds maximum length")
)

// Strip returns raw with all HTML tags removed and entities decoded.
// Text content is preserved in order.
func Strip(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// Check verifies that raw carries no HTML markup. It returns ErrMarkup when
// the stripped form differs from the input.
func Check(raw string) error {
	if Strip(raw) != raw {
		return ErrMarkup
	}
	return nil
}

// CleanField trims surrounding whitespace and verifies the result is
// non-blank, markup-free, and within maxLen bytes. It returns the trimmed
// value on success.
func CleanField(raw string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrBlank
	}
	if maxLen > 0 && len(trimmed) > maxLen {
		return "", ErrTooLong
	}
	if err := Check(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
