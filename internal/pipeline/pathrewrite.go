package pipeline

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RewriteRelativePaths converts relative image and link paths in a complete
// HTML document to absolute file:// URLs resolved against sourceDir. The
// rendering backends load the page from outside the source tree (a temp
// file, or an uploaded asset), so relative references would otherwise
// resolve against the wrong base and break.
//
// If sourceDir is empty, returns the HTML unchanged.
//
// Rewrites:
//   - img[src]: relative paths to images
//   - a[href]:  relative file paths (not anchors, not URLs)
//
// Does NOT rewrite (by design):
//   - video, audio, source elements (PDFs don't support media)
//   - srcset attributes (complex format, out of scope)
//   - CSS url() references (out of scope)
//   - script[src] (security)
//   - Absolute paths or URLs (already resolved)
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	// Make sourceDir absolute for consistent path resolution
	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parsing document for path rewrite: %w", err)
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		rewriteAttr(s, "src", absSourceDir)
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		rewriteAttr(s, "href", absSourceDir)
	})

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("rendering rewritten document: %w", err)
	}
	return out, nil
}

// rewriteAttr rewrites a single attribute if it's a relative path.
func rewriteAttr(s *goquery.Selection, attrName, sourceDir string) {
	val, ok := s.Attr(attrName)
	if !ok || !isRelativePath(val) {
		return
	}

	absPath := filepath.Join(sourceDir, val)

	// Security: leave references that escape sourceDir untouched
	if !isPathUnderDir(absPath, sourceDir) {
		return
	}

	s.SetAttr(attrName, pathToFileURL(absPath))
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	// Skip URLs (http, https, file, data, mailto, protocol-relative)
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "file://") ||
		strings.HasPrefix(path, "data:") ||
		strings.HasPrefix(path, "mailto:") ||
		strings.HasPrefix(path, "//") {
		return false
	}

	// Skip anchors
	if strings.HasPrefix(path, "#") {
		return false
	}

	// Skip absolute paths
	if filepath.IsAbs(path) {
		return false
	}

	return true
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths correctly.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
