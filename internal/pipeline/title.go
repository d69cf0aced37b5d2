package pipeline

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// DeriveTitle turns a file base name into a human-readable document title:
// hyphens and underscores become spaces, words are titlecased.
//
//	"project-charter"    -> "Project Charter"
//	"meeting_notes 2024" -> "Meeting Notes 2024"
func DeriveTitle(name string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(cleaned)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ExtractTitle pulls a display title out of a rendered HTML document: the
// first <h1>'s text if present, otherwise the <title> element. Returns ""
// when the document has neither or does not parse.
func ExtractTitle(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
