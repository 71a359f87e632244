package driven

// Normaliser turns the contents of one corpus file into document text.
// Each normaliser handles specific file extensions (e.g., .md, .html).
type Normaliser interface {
	// Extensions returns the lower-case extensions handled, dot included.
	Extensions() []string

	// Normalise extracts the title and plain text of a file. name is the
	// file's path and is used for the title when the content has none.
	Normalise(name string, content []byte) NormaliseResult
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	Title string

	// Text is the readable text with markup removed.
	Text string

	// Format names the source format, e.g. "markdown".
	Format string
}
