package chunker

import (
	"strings"
	"unicode/utf8"
)

// normalizeWhitespace collapses every run of whitespace to a single space
// and trims both ends.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences splits whitespace-normalised text into sentences.
//
// The boundary rule is a simple heuristic: a sentence ends at '.', '!' or '?'
// when the next character is a space. Abbreviations ("e.g. ", "Fig. 3") and
// decimal points followed by spaces are treated as boundaries too; no
// language-aware segmentation is attempted. Text without any boundary is
// returned as a single sentence.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				sentences = append(sentences, text[start:i+1])
				start = i + 2
				i++
			}
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// runeLen is the character length used for chunk size accounting.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// joinedLen returns the length of sentences joined with single spaces.
func joinedLen(lengths []int) int {
	if len(lengths) == 0 {
		return 0
	}
	total := len(lengths) - 1
	for _, l := range lengths {
		total += l
	}
	return total
}
