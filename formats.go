package doc2pdf

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mdresch/go-doc2pdf/internal/scan"
)

// Format identifies a supported source document format.
type Format int

// Supported formats. The set is closed: adding a format means adding a
// converter branch in buildDocument, and the compiler points at every
// switch that needs updating.
const (
	FormatMarkdown Format = iota
	FormatText
	FormatHTML
)

// String returns the format name used in logs and error messages.
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatText:
		return "text"
	case FormatHTML:
		return "html"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// formatByExt is the single source of truth for which extensions are
// convertible and what format each one carries.
var formatByExt = map[string]Format{
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".txt":      FormatText,
	".text":     FormatText,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// DetectFormat maps a file extension (with leading dot, any case) to its
// Format. Unknown extensions return ErrUnsupportedFormat.
func DetectFormat(ext string) (Format, error) {
	f, ok := formatByExt[strings.ToLower(ext)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// SupportedExtensions returns the discovery allow-list keyed by lowercased
// extension. The map is a copy; callers may modify it.
func SupportedExtensions() map[string]bool {
	exts := make(map[string]bool, len(formatByExt))
	for ext := range formatByExt {
		exts[ext] = true
	}
	return exts
}

// SupportedExtensionList returns the allow-list sorted, for help text and
// hints.
func SupportedExtensionList() []string {
	exts := make([]string, 0, len(formatByExt))
	for ext := range formatByExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// File identifies one discovered source document.
type File struct {
	AbsPath string // absolute path to the source file
	RelPath string // path relative to the scan root
	Name    string // base name without extension, original case
	Ext     string // extension, lowercased, with leading dot
}

// Discover walks inputRoot recursively and returns a File for every
// regular file with a convertible extension, sorted by relative path.
// Unreadable directories are logged to log and skipped. A nil log
// discards.
func Discover(inputRoot string, log *slog.Logger) ([]File, error) {
	descs, err := scan.Scan(inputRoot, SupportedExtensions(), log)
	if err != nil {
		return nil, err
	}

	files := make([]File, len(descs))
	for i, d := range descs {
		files[i] = File{
			AbsPath: d.AbsPath,
			RelPath: d.RelPath,
			Name:    d.Name,
			Ext:     d.Ext,
		}
	}
	return files, nil
}
