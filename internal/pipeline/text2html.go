package pipeline

import (
	"context"
	"html"
	"strings"
)

// TextConverter converts plain text to an HTML body fragment. Every source
// line becomes one paragraph; blank lines become non-breaking spaces so the
// original vertical spacing survives rendering.
type TextConverter struct{}

// NewTextConverter creates a TextConverter.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

// ToHTML converts text content to an HTML body fragment.
func (c *TextConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := strings.Split(normalizeLineEndings(content), "\n")

	var sb strings.Builder
	sb.Grow(len(content) + len(lines)*8)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			sb.WriteString("<p>&nbsp;</p>\n")
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(line))
		sb.WriteString("</p>\n")
	}

	return sb.String(), nil
}
