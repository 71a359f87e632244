package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

const (
	fallbackMaxParagraphs = 3
	fallbackSnippetRunes  = 200
	fallbackDefaultTitle  = "Document"
)

var (
	wordPattern        = regexp.MustCompile(`\b\w+\b`)
	documentHeader     = regexp.MustCompile(`^Document \d+: (.*)$`)
	bracketedHeader    = regexp.MustCompile(`^\[DOCUMENT \d+\] (.*)$`)
	fallbackStopwords  = stopwordSet()
	fallbackIntroFmt   = "Based on the documents I analyzed, here's what I found about '%s':\n\n"
	fallbackClosingMsg = "These excerpts may address your question. If you need more specific information, please ask a more targeted question."
)

func stopwordSet() map[string]struct{} {
	words := []string{
		"the", "a", "an", "and", "or", "but", "is", "are", "was", "were",
		"in", "on", "at", "to", "for", "with", "by", "about", "like",
		"through", "over", "before", "after", "between", "under", "of",
		"from", "up", "down", "do", "does", "did", "have", "has", "had",
		"am", "be", "been", "being", "what", "when", "where", "who", "why",
		"how", "which", "there", "can", "could", "should", "would", "will",
		"shall", "may", "might", "must", "that", "these", "those",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// queryKeywords returns the distinct lower-cased words of query that are
// not stopwords, in first-seen order.
func queryKeywords(query string) []string {
	var keywords []string
	seen := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(query), -1) {
		if _, stop := fallbackStopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}
	return keywords
}

type scoredParagraph struct {
	title string
	body  string
	score int
}

// FallbackAnswer answers without a language model: context paragraphs are
// scored by how many query keywords they contain and the best three are
// quoted as bullet citations.
func FallbackAnswer(query, context string) string {
	if strings.TrimSpace(context) == domain.MsgNoRelevantInformation {
		return fmt.Sprintf(domain.MsgFallbackNotFoundFormat, query)
	}
	keywords := queryKeywords(query)

	var scored []scoredParagraph
	for _, para := range strings.Split(context, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || para == strings.TrimSpace(contextHeader) {
			continue
		}
		lower := strings.ToLower(para)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		title, body := splitParagraph(para)
		scored = append(scored, scoredParagraph{title: title, body: body, score: score})
	}

	if len(scored) == 0 {
		return fmt.Sprintf(domain.MsgFallbackNotFoundFormat, query)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > fallbackMaxParagraphs {
		scored = scored[:fallbackMaxParagraphs]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, fallbackIntroFmt, query)
	for _, p := range scored {
		fmt.Fprintf(&sb, "• From %s: %s...\n\n", p.title, snippet(p.body))
	}
	sb.WriteString(fallbackClosingMsg)
	return sb.String()
}

// splitParagraph separates a "Document n: title" or "[DOCUMENT n] title"
// header line from the paragraph body.
func splitParagraph(para string) (title, body string) {
	first, rest, _ := strings.Cut(para, "\n")
	for _, re := range []*regexp.Regexp{documentHeader, bracketedHeader} {
		if m := re.FindStringSubmatch(first); m != nil {
			title = strings.TrimSpace(m[1])
			if title == "" {
				title = fallbackDefaultTitle
			}
			return title, strings.TrimSpace(rest)
		}
	}
	return fallbackDefaultTitle, para
}

func snippet(body string) string {
	if utf8.RuneCountInString(body) <= fallbackSnippetRunes {
		return body
	}
	return string([]rune(body)[:fallbackSnippetRunes])
}
