// Package plaintext passes text files through with line endings and byte
// order marks normalised.
package plaintext

import (
	"bytes"
	"strings"

	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text files.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text"}
}

// Normalise titles the document by file name and keeps the text as is.
func (n *Normaliser) Normalise(name string, content []byte) driven.NormaliseResult {
	text := string(bytes.TrimPrefix(content, utf8BOM))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return driven.NormaliseResult{
		Title:  normalisers.TitleFromName(name),
		Text:   text,
		Format: "text",
	}
}
