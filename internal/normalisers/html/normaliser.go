package html

import (
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML files.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Normalise titles the document by <title>, then the first <h1>, then the
// file name.
func (n *Normaliser) Normalise(name string, content []byte) driven.NormaliseResult {
	text := string(content)
	title := extractTitle(text)
	if title == "" {
		title = normalisers.TitleFromName(name)
	}
	return driven.NormaliseResult{
		Title:  title,
		Text:   stripHTML(text),
		Format: "html",
	}
}

// droppedTags are removed with their content, inner elements first.
var droppedTags = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
	regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
	regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
	regexp.MustCompile(`(?is)<head(\s[^>]*)?>.*?</head>`),
	regexp.MustCompile(`(?is)<title[^>]*>.*?</title>`),
}

var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Tag         = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	comments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockBoundary = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|header|footer|main|nav)(\s[^>]*)?>`)
	lineBreaks    = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
	spaces        = regexp.MustCompile(`[ \t\r]+`)
)

func extractTitle(content string) string {
	for _, re := range []*regexp.Regexp{titleTag, h1Tag} {
		m := re.FindStringSubmatch(content)
		if len(m) < 2 {
			continue
		}
		title := anyTag.ReplaceAllString(m[1], "")
		title = strings.TrimSpace(spaces.ReplaceAllString(html.UnescapeString(title), " "))
		if title != "" {
			return title
		}
	}
	return ""
}

func stripHTML(content string) string {
	for _, re := range droppedTags {
		content = re.ReplaceAllString(content, "")
	}
	content = comments.ReplaceAllString(content, "")
	content = blockBoundary.ReplaceAllString(content, "\n")
	content = lineBreaks.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = spaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
