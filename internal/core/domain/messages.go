package domain

// User-facing messages. Every generation path returns a displayable string,
// including the error and not-ready paths.
const (
	// MsgStillProcessing is returned when a question arrives before an index is ready.
	MsgStillProcessing = "I'm still processing the documents. Please wait a moment before asking questions."

	// MsgEmptyQuestion is returned for blank questions.
	MsgEmptyQuestion = "Please ask a question about your documents."

	// MsgNoRelevantInformation is the context sent to generators when nothing matched.
	MsgNoRelevantInformation = "No relevant information found in the documents for this question."

	// MsgContextTruncated is appended when retrieved chunks were dropped for budget.
	MsgContextTruncated = "\n(Some information was truncated due to context limits.)"

	// MsgChunkTruncated marks a chunk that was cut to fit the budget.
	MsgChunkTruncated = " [...]"

	// MsgFallbackNotFoundFormat is the fallback answer when no paragraph matched.
	// Expects the query as its only argument.
	MsgFallbackNotFoundFormat = "I couldn't find specific information about '%s' in the documents."

	// MsgServiceNotRunningFormat is returned when the local model server is down.
	// Expects the server base URL.
	MsgServiceNotRunningFormat = "Could not connect to Ollama. Please make sure it's running at %s."

	// MsgLocalTimeoutFormat is returned when the local model exceeds its timeout.
	// Expects the server base URL and the timeout.
	MsgLocalTimeoutFormat = "The local model at %s did not respond within %s. " +
		"Local inference can be slow; try a smaller model or a shorter question."
)
