// Package chunker provides a sentence-aware text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default maximum length of the trailing
// sentences repeated at the start of the next chunk.
const DefaultChunkOverlap = 200

// Processor splits document text into overlapping chunks of whole sentences.
// It implements the PostProcessor interface.
//
// Sentences are accumulated until the next one would push the chunk past the
// chunk size. The next chunk is seeded with the trailing sentences of the
// previous one whose joined length fits in the overlap. A sentence longer
// than the chunk size becomes a chunk on its own and is never split.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the effective overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from document text.
// Empty text yields no chunks and a logged warning, not an error.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("chunker: %w: nil document", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := normalizeWhitespace(doc.Text)
	if text == "" {
		logger.Warn("document %q has no text, skipping", doc.DisplayTitle())
		return nil, nil
	}

	pieces := p.split(splitSentences(text))

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, domain.NewChunk(doc, piece, i))
	}

	logger.Debug("chunker: %q -> %d chunks", doc.DisplayTitle(), len(chunks))
	return chunks, nil
}

// ProcessAll chunks a batch of documents in order. A document that fails is
// logged and skipped; only context cancellation aborts the batch.
func (p *Processor) ProcessAll(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for i := range docs {
		chunks, err := p.Process(ctx, &docs[i], nil)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("chunker: skipping %q: %v", docs[i].DisplayTitle(), err)
			continue
		}
		all = append(all, chunks...)
	}
	return all, nil
}

// split groups sentences into chunk texts.
func (p *Processor) split(sentences []string) []string {
	lengths := make([]int, len(sentences))
	for i, s := range sentences {
		lengths[i] = runeLen(s)
	}

	var (
		out   []string
		start int // first sentence of the open chunk
		size  int // joined length of the open chunk
	)

	for i := range sentences {
		if i > start && size+1+lengths[i] > p.chunkSize {
			out = append(out, strings.Join(sentences[start:i], " "))
			start = p.overlapStart(lengths, start, i)
			// Drop seed sentences that would push the new chunk over size.
			for start < i && joinedLen(lengths[start:i])+1+lengths[i] > p.chunkSize {
				start++
			}
			size = joinedLen(lengths[start:i])
		}

		if i > start {
			size += 1 + lengths[i]
		} else {
			size = lengths[i]
		}
	}

	if start < len(sentences) {
		out = append(out, strings.Join(sentences[start:], " "))
	}
	return out
}

// overlapStart returns the index of the first trailing sentence of
// sentences[from:to] whose joined tail length stays within the overlap.
// Returns to when no sentence fits.
func (p *Processor) overlapStart(lengths []int, from, to int) int {
	seed := to
	total := 0
	for j := to - 1; j >= from; j-- {
		add := lengths[j]
		if seed < to {
			add++
		}
		if total+add > p.overlap {
			break
		}
		total += add
		seed = j
	}
	return seed
}
