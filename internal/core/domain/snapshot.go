package domain

import "time"

// DocumentMetadata is the per-document entry of the snapshot sidecar.
type DocumentMetadata struct {
	Title    string   `json:"title"`
	DocIndex int      `json:"doc_index"`
	Authors  []string `json:"authors,omitempty"`
	Year     string   `json:"year,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// SnapshotMetadata is the JSON sidecar persisted next to an index.
type SnapshotMetadata struct {
	// DocumentMetadata is keyed by document ID.
	DocumentMetadata map[string]DocumentMetadata `json:"document_metadata"`

	// Titles lists every submitted document title in input order,
	// including documents skipped for having no text.
	Titles []string `json:"titles"`
}

// NewSnapshotMetadata derives the sidecar from an ingestion batch.
func NewSnapshotMetadata(docs []Document) SnapshotMetadata {
	meta := SnapshotMetadata{
		DocumentMetadata: make(map[string]DocumentMetadata, len(docs)),
		Titles:           make([]string, 0, len(docs)),
	}
	for i := range docs {
		meta.Titles = append(meta.Titles, docs[i].DisplayTitle())
		if docs[i].Text == "" {
			continue
		}
		meta.DocumentMetadata[docs[i].ID] = DocumentMetadata{
			Title:    docs[i].DisplayTitle(),
			DocIndex: i,
			Authors:  docs[i].Authors,
			Year:     docs[i].Year,
			Source:   docs[i].Source,
		}
	}
	return meta
}

// IndexSnapshot is the persisted form of a built index: the chunk list,
// the backend's fitted state and the metadata sidecar. Restoring a snapshot
// must reproduce identical scores for identical queries.
type IndexSnapshot struct {
	// Strategy names the retrieval strategy that produced State.
	Strategy RetrievalStrategy `json:"strategy"`

	// GenerationID identifies the index build.
	GenerationID string `json:"generation_id"`

	// CreatedAt is when the build completed.
	CreatedAt time.Time `json:"created_at"`

	// Chunks are the indexed chunks; row i of State corresponds to Chunks[i].
	Chunks []Chunk `json:"-"`

	// State is the backend-specific fitted state (may be empty).
	State []byte `json:"-"`

	// Metadata is the document sidecar.
	Metadata SnapshotMetadata `json:"-"`
}
