package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSystem is the system prompt sent with every generation request.
	// This prompt has no format placeholders.
	PromptSystem = "system"

	// PromptQuestion wraps the question and context for chat backends.
	// The template expects %[1]s (query) and %[2]s (context) placeholders.
	PromptQuestion = "question"

	// PromptLocal is the single-string prompt for completion backends.
	// The template expects %[1]s (system prompt), %[2]s (context) and %[3]s (query).
	PromptLocal = "local"
)
