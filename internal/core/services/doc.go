// Package services holds the RAG pipeline: RAGManager drives indexing and
// answering, ResponseGenerator talks to the configured language model with
// a keyword fallback, and ContextBudgeter fits ranked chunks into a model's
// context window. SettingsService validates and writes configuration.
//
// Services only see driven ports; adapters are wired in by internal/app.
package services
