// Package llm provides the LLM collaborators the validators and the decision
// tree are built on: a structured caller that returns parsed JSON fields and
// a stateful chat session that accumulates conversation history.
package llm

import "context"

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StructuredCaller submits a system instruction plus content and returns the
// parsed JSON object from the response. Errors from the transport or from
// JSON parsing are returned as-is; callers decide what to do with them.
type StructuredCaller interface {
	Call(ctx context.Context, sysMsg, content, usageLabel string) (map[string]any, error)
}

// ChatCaller is a stateful conversation with the LLM. History accumulates
// across calls; Messages exposes the transcript for diagnostics.
type ChatCaller interface {
	Chat(ctx context.Context, content string) (string, error)
	Messages() []Message
}
