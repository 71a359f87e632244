// Package normalisers turns the text files of a corpus directory into plain
// document text. Each subpackage handles one format and implements
// driven.Normaliser.
package normalisers

import (
	"path/filepath"
	"strings"
)

// TitleFromName derives a readable title from a file path.
func TitleFromName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.NewReplacer("_", " ", "-", " ").Replace(base)
}
