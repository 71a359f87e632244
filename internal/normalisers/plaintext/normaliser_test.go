package plaintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".txt", ".text"}, New().Extensions())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		title    string
		expected string
	}{
		{
			name:     "kept as is",
			path:     "/notes/reading_list.txt",
			content:  "Line one\n\n  indented",
			title:    "reading list",
			expected: "Line one\n\n  indented",
		},
		{
			name:     "windows line endings",
			path:     "a.txt",
			content:  "one\r\ntwo\r\n",
			title:    "a",
			expected: "one\ntwo\n",
		},
		{
			name:     "byte order mark dropped",
			path:     "bom.text",
			content:  "\xEF\xBB\xBFHello",
			title:    "bom",
			expected: "Hello",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := New().Normalise(tc.path, []byte(tc.content))
			assert.Equal(t, tc.title, result.Title)
			assert.Equal(t, tc.expected, result.Text)
			assert.Equal(t, "text", result.Format)
		})
	}
}
