package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseStampFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		// Valid token conversions
		{
			name:   "YYYY converts to Go year format",
			format: "YYYY",
			want:   "2006",
		},
		{
			name:   "YY converts to short year format",
			format: "YY",
			want:   "06",
		},
		{
			name:   "MMMM converts to full month name",
			format: "MMMM",
			want:   "January",
		},
		{
			name:   "MMM converts to short month name",
			format: "MMM",
			want:   "Jan",
		},
		{
			name:   "MM converts to zero-padded month",
			format: "MM",
			want:   "01",
		},
		{
			name:   "DD converts to zero-padded day",
			format: "DD",
			want:   "02",
		},
		{
			name:   "HH converts to 24-hour format",
			format: "HH",
			want:   "15",
		},
		{
			name:   "mm converts to minutes",
			format: "mm",
			want:   "04",
		},
		{
			name:   "ss converts to seconds",
			format: "ss",
			want:   "05",
		},
		// Combined formats
		{
			name:   "default stamp layout",
			format: "YYYY-MM-DD HH:mm",
			want:   "2006-01-02 15:04",
		},
		{
			name:   "european layout",
			format: "DD/MM/YYYY HH:mm",
			want:   "02/01/2006 15:04",
		},
		{
			name:   "long layout with escaped literal",
			format: "MMMM D, YYYY [at] HH:mm",
			want:   "January 2, 2006 at 15:04",
		},
		// Literal preservation
		{
			name:   "preserves literal separators",
			format: "YYYY/MM/DD",
			want:   "2006/01/02",
		},
		{
			name:   "preserves parens",
			format: "(YYYY-MM-DD)",
			want:   "(2006-01-02)",
		},
		{
			name:   "D in text is matched as day token",
			format: "Date: YYYY",
			want:   "2ate: 2006", // D -> 2 (day), use [Date] to escape
		},
		// Bracket escape syntax
		{
			name:   "brackets preserve literal text",
			format: "[Date]: YYYY",
			want:   "Date: 2006",
		},
		{
			name:   "brackets preserve tokens as literals",
			format: "[YYYY]-MM-DD",
			want:   "YYYY-01-02",
		},
		// Errors
		{
			name:    "empty format",
			format:  "",
			wantErr: ErrInvalidStampFormat,
		},
		{
			name:    "unclosed bracket",
			format:  "[Date: YYYY",
			wantErr: ErrInvalidStampFormat,
		},
		{
			name:    "format too long",
			format:  strings.Repeat("Y", MaxStampFormatLength+1),
			wantErr: ErrInvalidStampFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseStampFormat(tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseStampFormat(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStampFormat(%q) error = %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("ParseStampFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormatStamp(t *testing.T) {
	t.Parallel()

	// Fixed instant so every case is deterministic.
	at := time.Date(2024, time.March, 7, 14, 30, 9, 0, time.UTC)

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{
			name:   "empty format uses default",
			format: "",
			want:   "2024-03-07 14:30",
		},
		{
			name:   "iso preset",
			format: "iso",
			want:   "2024-03-07 14:30",
		},
		{
			name:   "date preset",
			format: "date",
			want:   "2024-03-07",
		},
		{
			name:   "european preset",
			format: "european",
			want:   "07/03/2024 14:30",
		},
		{
			name:   "us preset",
			format: "us",
			want:   "03/07/2024 14:30",
		},
		{
			name:   "long preset",
			format: "long",
			want:   "March 7, 2024 at 14:30",
		},
		{
			name:   "preset lookup is case-insensitive",
			format: "ISO",
			want:   "2024-03-07 14:30",
		},
		{
			name:   "custom format with seconds",
			format: "YYYY-MM-DD HH:mm:ss",
			want:   "2024-03-07 14:30:09",
		},
		{
			name:    "invalid custom format",
			format:  "[unclosed",
			wantErr: ErrInvalidStampFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FormatStamp(tt.format, at)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FormatStamp(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatStamp(%q) error = %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("FormatStamp(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}
