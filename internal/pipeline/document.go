package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/mdresch/go-doc2pdf/internal/assets"
)

// ErrPageRender indicates the shared page template failed to render.
var ErrPageRender = errors.New("page template rendering failed")

// PageData carries everything the shared page template injects around a
// converted body fragment.
type PageData struct {
	Title       string // human-readable document title
	SourcePath  string // path of the source file, relative to the scan root
	GeneratedAt string // formatted generation timestamp
	Body        string // converted HTML body fragment, trusted
}

// DocumentBuilder wraps body fragments in the shared page template with the
// fixed stylesheet.
type DocumentBuilder struct {
	tmpl *template.Template
}

// NewDocumentBuilder parses the embedded page template.
func NewDocumentBuilder() (*DocumentBuilder, error) {
	tmpl, err := template.New("page").Parse(assets.PageTemplate())
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &DocumentBuilder{tmpl: tmpl}, nil
}

// BuildPage renders a complete HTML document around data.Body. Title,
// source path and timestamp are escaped; the body fragment is injected
// as-is since it comes from our own converters.
func (b *DocumentBuilder) BuildPage(ctx context.Context, data PageData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	err := b.tmpl.Execute(&sb, struct {
		Title       string
		Styles      template.CSS
		SourcePath  string
		GeneratedAt string
		Body        template.HTML
	}{
		Title:       data.Title,
		Styles:      template.CSS(assets.Stylesheet()),
		SourcePath:  data.SourcePath,
		GeneratedAt: data.GeneratedAt,
		Body:        template.HTML(data.Body),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return sb.String(), nil
}
