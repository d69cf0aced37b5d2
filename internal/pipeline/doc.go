// Package pipeline normalizes source documents into self-contained HTML.
//
// One converter exists per supported input format:
//   - Markdown: preprocessing plus Goldmark (GFM) conversion
//   - Plain text: paragraph wrapping with escaping
//
// Converters emit body fragments; DocumentBuilder wraps a fragment in the
// shared page template (title, fixed stylesheet, metadata header). HTML
// input never enters this package: pre-formatted documents pass through
// untouched by design.
//
// PDF generation is handled separately by the root doc2pdf package. The
// separation keeps this package focused on document structure and content
// while rendering handles page layout, margins and backends.
package pipeline
