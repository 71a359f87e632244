// Package corpus loads ingestion batches from manifests and note
// directories, and watches directories for changes.
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/normalisers/html"
	"github.com/custodia-labs/zotero-rag/internal/normalisers/markdown"
	"github.com/custodia-labs/zotero-rag/internal/normalisers/plaintext"
)

// manifestExtensions hold document lists rather than document text.
var manifestExtensions = []string{".json", ".yaml", ".yml"}

// textNormalisers extract the text of note and snapshot files.
var textNormalisers = byExtension(plaintext.New(), markdown.New(), html.New())

// Extensions lists the file types a directory load picks up.
var Extensions = append(slices.Clone(manifestExtensions), slices.Sorted(maps.Keys(textNormalisers))...)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader reads documents from a manifest file or a directory.
//
// Manifests are JSON or YAML holding a list of documents, an object with a
// "documents" list, or a single document. Text, Markdown and HTML files
// become one document each with their markup stripped.
type Loader struct{}

// NewLoader creates a loader.
func NewLoader() *Loader {
	return &Loader{}
}

// manifest accepts {"documents": [...]}.
type manifest struct {
	Documents []domain.Document `json:"documents" yaml:"documents"`
}

// Load reads the documents at location in a stable order.
func (l *Loader) Load(ctx context.Context, location string) ([]domain.Document, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", location, err)
	}
	if !info.IsDir() {
		return loadFile(location, filepath.Base(location))
	}

	var docs []domain.Document
	err = filepath.WalkDir(location, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != location && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}

		rel, err := filepath.Rel(location, path)
		if err != nil {
			return err
		}
		loaded, err := loadFile(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

func byExtension(ns ...driven.Normaliser) map[string]driven.Normaliser {
	m := make(map[string]driven.Normaliser)
	for _, n := range ns {
		for _, ext := range n.Extensions() {
			m[ext] = n
		}
	}
	return m
}

func loadFile(path, id string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if n, ok := textNormalisers[ext]; ok {
		result := n.Normalise(path, data)
		return []domain.Document{{
			ID:     id,
			Title:  result.Title,
			Text:   result.Text,
			Source: path,
		}}, nil
	}

	switch ext {
	case ".json":
		docs, err := decodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
		}
		return fillDefaults(docs, id, path), nil

	case ".yaml", ".yml":
		docs, err := decodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
		}
		return fillDefaults(docs, id, path), nil

	default:
		return nil, fmt.Errorf("%w: corpus file %s", domain.ErrUnsupportedType, path)
	}
}

func decodeJSON(data []byte) ([]domain.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var docs []domain.Document
		err := json.Unmarshal(trimmed, &docs)
		return docs, err
	}

	var m manifest
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, err
	}
	if m.Documents != nil {
		return m.Documents, nil
	}
	var doc domain.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return []domain.Document{doc}, nil
}

func decodeYAML(data []byte) ([]domain.Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var docs []domain.Document
		err := root.Decode(&docs)
		return docs, err
	case yaml.MappingNode:
		var m manifest
		if err := root.Decode(&m); err != nil {
			return nil, err
		}
		if m.Documents != nil {
			return m.Documents, nil
		}
		var doc domain.Document
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		return []domain.Document{doc}, nil
	default:
		return nil, fmt.Errorf("expected a list or mapping at top level")
	}
}

// fillDefaults gives documents without an ID a stable one derived from the file.
func fillDefaults(docs []domain.Document, id, path string) []domain.Document {
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = id + "#" + strconv.Itoa(i)
		}
		if docs[i].Source == "" {
			docs[i].Source = path
		}
	}
	return docs
}
