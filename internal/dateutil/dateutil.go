// Package dateutil formats the generation timestamp shown in document
// metadata headers.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidStampFormat indicates an invalid timestamp format string.
var ErrInvalidStampFormat = errors.New("invalid timestamp format")

// MaxStampFormatLength limits format string length to prevent abuse.
const MaxStampFormatLength = 50

// DefaultStampFormat is the metadata header timestamp layout used when no
// format is configured.
const DefaultStampFormat = "YYYY-MM-DD HH:mm"

// stampTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var stampTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// StampPresets provides named shortcuts for common timestamp formats.
var StampPresets = map[string]string{
	"iso":      "YYYY-MM-DD HH:mm",
	"date":     "YYYY-MM-DD",
	"european": "DD/MM/YYYY HH:mm",
	"us":       "MM/DD/YYYY HH:mm",
	"long":     "MMMM D, YYYY [at] HH:mm",
}

// ParseStampFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss.
// Use brackets to escape literal text: [at] preserves "at" literally.
// Any non-token characters outside brackets are preserved as literals.
// Returns ErrInvalidStampFormat if the format is empty, too long, or has
// unclosed brackets.
func ParseStampFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidStampFormat)
	}
	if len(format) > MaxStampFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidStampFormat, MaxStampFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		// Bracket-escaped literal text
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidStampFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false

		// Longest token first due to slice order
		for _, t := range stampTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// FormatStamp renders t using a user-friendly format string or a preset name
// (iso, date, european, us, long). An empty format falls back to
// DefaultStampFormat.
func FormatStamp(format string, t time.Time) (string, error) {
	if format == "" {
		format = DefaultStampFormat
	}
	if preset, ok := StampPresets[strings.ToLower(format)]; ok {
		format = preset
	}

	goFmt, err := ParseStampFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}
