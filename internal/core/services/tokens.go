package services

import "unicode/utf8"

// EstimateTokens approximates the token count of s as its character count
// divided by four, rounded down. It is an estimate, not a tokenizer, and is
// used for every budgeting and logging decision.
func EstimateTokens(s string) int {
	return utf8.RuneCountInString(s) / 4
}

// maxRunesForTokens is the longest text whose estimate stays within tokens.
func maxRunesForTokens(tokens int) int {
	if tokens < 0 {
		return 0
	}
	return tokens*4 + 3
}
