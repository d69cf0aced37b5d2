// Package assets carries the fixed stylesheet and page template embedded
// into every generated document. The visual identity of the output is not
// user-configurable; both assets are compiled in.
package assets

import _ "embed"

//go:embed styles/document.css
var stylesheet string

//go:embed templates/page.html
var pageTemplate string

// Stylesheet returns the CSS injected into the shared page template.
func Stylesheet() string {
	return stylesheet
}

// PageTemplate returns the HTML page skeleton. It is an html/template body
// expecting Title, Styles, SourcePath, GeneratedAt and Body values.
func PageTemplate() string {
	return pageTemplate
}
