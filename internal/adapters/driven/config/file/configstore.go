package file

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// ConfigFile is the name of the config file inside the config directory.
const ConfigFile = "config.toml"

// maxTableDepth bounds table nesting on save. Longer keys keep their tail
// as one quoted key, so model names such as "llama3.2:3b" survive intact.
const maxTableDepth = 3

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a TOML file.
//
// Tables are flattened to dot-separated keys on load ("[llm] model" reads
// as "llm.model") and nested again on save, so a hand-edited file keeps
// its sections after "zrag config set".
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens configDir/config.toml, creating the directory.
// An empty configDir means ~/.zrag. A missing file is an empty config.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, ConfigFile),
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultDir returns ~/.zrag.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".zrag"), nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// GetString returns the value at key if it is a string.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetBool returns the value at key if it is a boolean.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// GetInt returns the value at key as an int. Floats are truncated and
// numeric strings parsed; anything else reads as zero.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	f, ok := number(val)
	if !ok {
		return 0
	}
	return int(f)
}

// GetFloat returns the value at key as a float64. Integers are converted.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	f, _ := number(val)
	return f
}

// GetIntMap collects the positive integers under prefix, keyed by the rest
// of the key.
func (s *ConfigStore) GetIntMap(prefix string) map[string]int {
	prefix += "."
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]int)
	for key, val := range s.data {
		name, ok := strings.CutPrefix(key, prefix)
		if !ok || name == "" {
			continue
		}
		if f, ok := number(val); ok && int(f) > 0 {
			result[name] = int(f)
		}
	}
	return result
}

// GetStringSlice returns the strings in the array at key.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the file through a temporary name. The caller holds mu.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nest(s.data))
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.filePath, err)
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

// Load rereads the file. A missing file leaves the store empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.data = make(map[string]any)
	flatten(s.data, loaded, "")
	return nil
}

// flatten copies m into dst with nested tables joined by dots.
func flatten(dst, m map[string]any, prefix string) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flatten(dst, table, key)
			continue
		}
		dst[key] = value
	}
}

// nest is the inverse of flatten for keys of up to maxTableDepth parts.
// Keys are visited in order so a value always precedes longer keys that
// share its prefix; such keys stay flat beside it.
func nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.SplitN(key, ".", maxTableDepth)
		table := root
		for i := 0; i < len(parts)-1; i++ {
			child, ok := table[parts[i]].(map[string]any)
			if !ok {
				if _, taken := table[parts[i]]; taken {
					parts = append(parts[:i], strings.Join(parts[i:], "."))
					break
				}
				child = make(map[string]any)
				table[parts[i]] = child
			}
			table = child
		}
		table[parts[len(parts)-1]] = flat[key]
	}
	return root
}

// number converts TOML numbers and numeric strings to float64.
func number(val any) (float64, bool) {
	switch v := val.(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
