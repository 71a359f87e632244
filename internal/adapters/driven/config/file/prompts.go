package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads generation prompts from user-editable files on disk,
// falling back to the built-in defaults.
//
// Initialisation is lazy: the directory and default files are written on the
// first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are written to disk on first use and served when a file is missing.
var defaultPrompts = map[string]string{
	driven.PromptSystem:   domain.DefaultSystemPrompt,
	driven.PromptQuestion: domain.DefaultQuestionPrompt,
	driven.PromptLocal:    domain.DefaultLocalPrompt,
}

// requiredVerbs lists the format verbs each template must keep.
// An edited file missing one is ignored in favour of the default.
var requiredVerbs = map[string][]string{
	driven.PromptQuestion: {"%[1]s", "%[2]s"},
	driven.PromptLocal:    {"%[1]s", "%[2]s", "%[3]s"},
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.zrag/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	if missing := missingVerbs(name, prompt); len(missing) > 0 {
		logger.Warn("Prompt %q is missing %s, using the built-in default", name, strings.Join(missing, ", "))
		prompt = defaultPrompts[name]
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

func missingVerbs(name, prompt string) []string {
	var missing []string
	for _, verb := range requiredVerbs[name] {
		if !strings.Contains(prompt, verb) {
			missing = append(missing, verb)
		}
	}
	return missing
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := s.path(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# zrag prompts

These files control how zrag asks the language model to answer questions.

- ` + "`system.txt`" + ` - system prompt sent with every question
- ` + "`question.txt`" + ` - chat prompt; ` + "`%[1]s`" + ` is the question, ` + "`%[2]s`" + ` the retrieved context
- ` + "`local.txt`" + ` - single-string prompt for Ollama; ` + "`%[1]s`" + ` system prompt,
  ` + "`%[2]s`" + ` context, ` + "`%[3]s`" + ` question

Edits take effect the next time zrag starts. A template that drops one of
its placeholders is ignored and the built-in default is used instead.
Delete a file to restore its default.
`
	return os.WriteFile(path, []byte(content), 0600)
}
