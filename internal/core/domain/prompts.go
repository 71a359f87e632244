package domain

// Built-in prompt templates. User overrides live in the prompt directory.
const (
	// DefaultSystemPrompt is the system prompt sent with every generation request.
	DefaultSystemPrompt = "You are a helpful research assistant. Your task is to answer questions based on " +
		"the provided context from academic papers and documents. Stay factual and provide information " +
		"that is supported by the context. If the context doesn't contain enough information to answer " +
		"the question, say so clearly. When appropriate, cite the specific documents you're drawing " +
		"information from."

	// DefaultQuestionPrompt wraps a question for chat backends.
	// Placeholders: %[1]s query, %[2]s context.
	DefaultQuestionPrompt = "Based on the following excerpts from academic papers and documents, " +
		"please answer this question:\n\nQuestion: %[1]s\n\nContext:\n%[2]s\n\n" +
		"Please provide a detailed answer based solely on the information in the context. " +
		"If the information isn't in the context, please state that clearly."

	// DefaultLocalPrompt is the single-string prompt for completion backends.
	// Placeholders: %[1]s system prompt, %[2]s context, %[3]s query.
	DefaultLocalPrompt = "%[1]s\n\nContext:\n%[2]s\n\nQuestion: %[3]s\n\n" +
		"Please answer based on the provided context."
)
