// Package llm provides the chat-completion clients the inference stages run
// on: OpenAI, Anthropic, and Ollama providers behind a single interface,
// circuit breaker protection, and best-effort normalization of the JSON
// replies the services produce.
package llm

import "context"

// ChatCompleter is the interface to a chat-completion LLM endpoint. Every
// stage call supplies a fixed system role and a user prompt and expects a
// single JSON object back; the reply is returned verbatim for the caller to
// normalize.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
	GetModel() string
}
