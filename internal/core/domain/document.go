package domain

// Document is a single source text supplied by the ingestion collaborator.
// The core only reads it; it is not retained beyond chunk derivation.
type Document struct {
	// ID is the caller's identifier for the document (e.g. a Zotero item key).
	ID string `json:"id" yaml:"id"`

	// Title is the human-readable title.
	Title string `json:"title" yaml:"title"`

	// Text is the full extracted text before chunking.
	Text string `json:"text" yaml:"text"`

	// Authors lists the document authors in citation order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year as supplied (free-form).
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Source describes where the document came from (file path, URL, library).
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// DisplayTitle returns the title, or a placeholder for untitled documents.
func (d Document) DisplayTitle() string {
	if d.Title == "" {
		return UntitledDocument
	}
	return d.Title
}

// UntitledDocument is used wherever a document has no title.
const UntitledDocument = "Untitled Document"

// ChunkMetadata is the bibliographic metadata copied from the source document.
type ChunkMetadata struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	Year    string   `json:"year,omitempty"`
	Source  string   `json:"source,omitempty"`
}

// Chunk is a bounded, sentence-respecting slice of a document's text.
// Chunks are immutable once created and replaced wholesale on re-indexing.
type Chunk struct {
	// Text is the chunk content (whitespace-normalised).
	Text string `json:"text"`

	// DocumentTitle is the title of the parent document.
	DocumentTitle string `json:"document_title"`

	// DocumentID links to the parent document.
	DocumentID string `json:"document_id"`

	// ChunkIndex is the 0-based position of the chunk within its document.
	ChunkIndex int `json:"chunk_index"`

	// Metadata is copied from the parent document.
	Metadata ChunkMetadata `json:"metadata"`
}

// NewChunk builds a chunk for doc at the given position.
func NewChunk(doc *Document, text string, index int) Chunk {
	authors := make([]string, len(doc.Authors))
	copy(authors, doc.Authors)

	return Chunk{
		Text:          text,
		DocumentTitle: doc.DisplayTitle(),
		DocumentID:    doc.ID,
		ChunkIndex:    index,
		Metadata: ChunkMetadata{
			Title:   doc.DisplayTitle(),
			Authors: authors,
			Year:    doc.Year,
			Source:  doc.Source,
		},
	}
}
