package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

// contextHeader opens every assembled context.
const contextHeader = "Here's information from relevant documents:\n\n"

// ContextBudgeter assembles retrieved chunks into a context string that
// fits a model's token budget.
type ContextBudgeter struct {
	settings domain.BudgetSettings
}

// NewContextBudgeter creates a budgeter with the given settings.
func NewContextBudgeter(settings domain.BudgetSettings) *ContextBudgeter {
	return &ContextBudgeter{settings: settings}
}

// ResolveBudget returns the token budget for model from the configured
// context-limit table.
func (b *ContextBudgeter) ResolveBudget(model string) int {
	return b.settings.TokenBudget(model)
}

// Reserved returns the tokens held back for the system prompt and response.
func (b *ContextBudgeter) Reserved() int {
	return b.settings.ReservedSystemTokens + b.settings.ReservedResponseTokens
}

// BuildContext formats ranked chunks as numbered document entries in rank
// order until the budget left after the query and reserved tokens runs out.
// The first entry that does not fit is truncated at a sentence or word
// boundary when enough budget remains, otherwise a truncation notice is
// appended. The estimate of the result never exceeds tokenBudget, and the
// result is never empty when tokenBudget allows any text.
func (b *ContextBudgeter) BuildContext(query string, ranked []domain.RetrievalResult, tokenBudget int) string {
	if len(ranked) == 0 {
		return clipToTokens(domain.MsgNoRelevantInformation, tokenBudget)
	}

	available := tokenBudget - EstimateTokens(query) - b.Reserved()
	limit := maxRunesForTokens(available)

	var sb strings.Builder
	sb.WriteString(contextHeader)
	used := utf8.RuneCountInString(contextHeader)

	included := 0
	partial := false
	dropped := false

	for n, r := range ranked {
		entry := formatEntry(n+1, r.Chunk.DocumentTitle, r.Chunk.Text)
		entryLen := utf8.RuneCountInString(entry)
		if used+entryLen <= limit {
			sb.WriteString(entry)
			used += entryLen
			included++
			continue
		}

		dropped = true
		remaining := available - used/4
		if remaining > b.settings.MinPartialTokens {
			if e, ok := truncateEntry(n+1, r.Chunk.DocumentTitle, r.Chunk.Text, limit-used); ok {
				sb.WriteString(e)
				used += utf8.RuneCountInString(e)
				included++
				partial = true
			}
		}
		break
	}

	if dropped && !partial {
		if used+utf8.RuneCountInString(domain.MsgContextTruncated) <= limit {
			sb.WriteString(domain.MsgContextTruncated)
		}
	}

	out := sb.String()
	if included == 0 {
		out = strings.TrimSpace(domain.MsgContextTruncated)
	}
	out = clipToTokens(out, tokenBudget)

	logger.Debug("context: %d/%d chunks, ~%d tokens (budget %d, available %d)",
		included, len(ranked), EstimateTokens(out), tokenBudget, available)
	return out
}

func formatEntry(n int, title, text string) string {
	return fmt.Sprintf("Document %d: %s\n%s\n\n", n, title, text)
}

// truncateEntry formats an entry whose text is cut so the whole entry,
// marker included, is at most maxRunes characters.
func truncateEntry(n int, title, text string, maxRunes int) (string, bool) {
	overhead := utf8.RuneCountInString(formatEntry(n, title, "")) + utf8.RuneCountInString(domain.MsgChunkTruncated)
	cut, ok := truncateAtBoundary(text, maxRunes-overhead)
	if !ok {
		return "", false
	}
	return formatEntry(n, title, cut+domain.MsgChunkTruncated), true
}

// truncateAtBoundary returns the longest prefix of text of at most maxRunes
// characters that ends at a sentence boundary, or failing that at a word
// boundary. It never cuts inside a word.
func truncateAtBoundary(text string, maxRunes int) (string, bool) {
	if maxRunes <= 0 {
		return "", false
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text, true
	}

	cut := string(runes[:maxRunes])
	atWordEnd := runes[maxRunes] == ' '

	if atWordEnd && endsSentence(cut) {
		return cut, true
	}
	for i := len(cut) - 2; i >= 0; i-- {
		if isSentenceEnd(cut[i]) && cut[i+1] == ' ' {
			return cut[:i+1], true
		}
	}
	if atWordEnd {
		return strings.TrimRight(cut, " "), true
	}
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		return strings.TrimRight(cut[:i], " "), true
	}
	return "", false
}

func isSentenceEnd(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func endsSentence(s string) bool {
	return s != "" && isSentenceEnd(s[len(s)-1])
}

// clipToTokens shortens s at a word boundary until its estimate fits tokens.
func clipToTokens(s string, tokens int) string {
	maxRunes := maxRunesForTokens(tokens)
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	if cut, ok := truncateAtBoundary(s, maxRunes); ok {
		return cut
	}
	return string([]rune(s)[:maxRunes])
}
