// Package llm abstracts the chat models behind answer generation and
// transcript summarization. Providers are constructed once at startup and
// shared; Complete is safe for concurrent use.
package llm

import "context"

// Provider is a chat completion backend.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name identifies the backend in logs and answer metadata.
	Name() string
}
