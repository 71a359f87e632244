// Package file persists index snapshots as JSON files in a data directory.
//
// A snapshot is a set of data files named after a per-save tag
// (chunks-<tag>.json, vectorizer-<tag>.json when the backend has fitted
// state, metadata-<tag>.json) plus snapshot.json, which names the set.
// Data files are never overwritten in place. snapshot.json is renamed
// into place last, so a reader sees either the old set or the new one;
// files of the replaced set are removed afterwards.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// Base names of the snapshot files. Data files carry a save tag before
// the extension.
const (
	ChunksFile     = "chunks.json"
	VectorizerFile = "vectorizer.json"
	MetadataFile   = "metadata.json"
	ManifestFile   = "snapshot.json"
)

// ErrCorrupt indicates the files on disk do not form a consistent snapshot.
var ErrCorrupt = errors.New("corrupt snapshot")

// rename is replaced in tests to interrupt a save.
var rename = os.Rename

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// manifest is the content of snapshot.json.
type manifest struct {
	Strategy     domain.RetrievalStrategy `json:"strategy"`
	GenerationID string                   `json:"generation_id"`
	CreatedAt    time.Time                `json:"created_at"`
	ChunkCount   int                      `json:"chunk_count"`
	HasState     bool                     `json:"has_state"`
	Chunks       string                   `json:"chunks"`
	Vectorizer   string                   `json:"vectorizer,omitempty"`
	Metadata     string                   `json:"metadata"`
}

// files lists the data files the manifest refers to.
func (m manifest) files() []string {
	files := []string{m.Chunks, m.Metadata}
	if m.Vectorizer != "" {
		files = append(files, m.Vectorizer)
	}
	return files
}

// tagged returns base with tag inserted before the extension.
func tagged(base, tag string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + tag + ext
}

// Store is a directory-backed snapshot store.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates the data directory if needed.
// If dir is empty, defaults to ~/.zrag/data.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".zrag", "data")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the snapshot files, replacing any previous snapshot.
// A failed save leaves the previous snapshot loadable.
func (s *Store) Save(_ context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tag := uuid.NewString()
	m := manifest{
		Strategy:     snapshot.Strategy,
		GenerationID: snapshot.GenerationID,
		CreatedAt:    snapshot.CreatedAt.UTC(),
		ChunkCount:   len(snapshot.Chunks),
		HasState:     len(snapshot.State) > 0,
		Chunks:       tagged(ChunksFile, tag),
		Metadata:     tagged(MetadataFile, tag),
	}

	chunks := snapshot.Chunks
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	if err := s.writeJSON(m.Chunks, chunks); err != nil {
		return s.discard(m, err)
	}
	if m.HasState {
		m.Vectorizer = tagged(VectorizerFile, tag)
		if err := s.writeFile(m.Vectorizer, snapshot.State); err != nil {
			return s.discard(m, err)
		}
	}
	if err := s.writeJSON(m.Metadata, snapshot.Metadata); err != nil {
		return s.discard(m, err)
	}
	if err := s.writeJSON(ManifestFile, m); err != nil {
		return s.discard(m, err)
	}

	return s.removeStale(m)
}

// discard removes the data files of an uncommitted save and returns err.
func (s *Store) discard(m manifest, err error) error {
	for _, name := range m.files() {
		_ = removeIfExists(s.path(name))
	}
	return err
}

// removeStale deletes data files not referenced by the committed manifest.
func (s *Store) removeStale(m manifest) error {
	keep := make(map[string]bool)
	for _, name := range m.files() {
		keep[name] = true
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", s.dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if keep[name] || !isDataFile(name) {
			continue
		}
		if err := removeIfExists(s.path(name)); err != nil {
			return fmt.Errorf("removing stale %s: %w", name, err)
		}
	}
	return nil
}

// isDataFile reports whether name is a tagged snapshot data file.
func isDataFile(name string) bool {
	for _, base := range []string{ChunksFile, VectorizerFile, MetadataFile} {
		if ok, _ := filepath.Match(tagged(base, "*"), name); ok {
			return true
		}
	}
	return false
}

// Load reads the snapshot files.
// Returns domain.ErrSnapshotNotFound if no manifest exists.
func (s *Store) Load(_ context.Context) (*domain.IndexSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var m manifest
	if err := s.readJSON(ManifestFile, &m); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}

	snap := &domain.IndexSnapshot{
		Strategy:     m.Strategy,
		GenerationID: m.GenerationID,
		CreatedAt:    m.CreatedAt,
	}
	if m.Chunks == "" || m.Metadata == "" || m.HasState != (m.Vectorizer != "") {
		return nil, fmt.Errorf("%w: %s does not name its data files", ErrCorrupt, ManifestFile)
	}
	if err := s.readJSON(m.Chunks, &snap.Chunks); err != nil {
		return nil, err
	}
	if len(snap.Chunks) != m.ChunkCount {
		return nil, fmt.Errorf("%w: %s has %d chunks, manifest expects %d",
			ErrCorrupt, m.Chunks, len(snap.Chunks), m.ChunkCount)
	}
	if m.HasState {
		state, err := os.ReadFile(s.path(m.Vectorizer))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrCorrupt, m.Vectorizer, err)
		}
		snap.State = state
	}
	if err := s.readJSON(m.Metadata, &snap.Metadata); err != nil {
		return nil, err
	}
	return snap, nil
}

// Exists reports whether a manifest is present.
func (s *Store) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path(ManifestFile))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Clear removes all snapshot files. The manifest goes first.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := removeIfExists(s.path(ManifestFile)); err != nil {
		return err
	}
	return s.removeStale(manifest{})
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", name, err)
	}
	return s.writeFile(name, data)
}

func (s *Store) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", name, err)
	}
	return nil
}

func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && name != ManifestFile {
			return fmt.Errorf("%w: missing %s", ErrCorrupt, name)
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrCorrupt, name, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
