package interfaces

import (
	"context"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string `json:"role"`

	// Content contains the text content of the message
	Content string `json:"content"`
}

// LLMService defines the interface for chat completions against a hosted model.
// Both the intent classifier and the answer composer go through it.
type LLMService interface {
	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full conversation context including
	// the system prompt, prior turns and the current user message.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - messages: Conversation history in chronological order
	//
	// Returns:
	//   - string: Generated assistant response
	//   - error: Error if chat completion fails or times out
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the provider is configured and reachable.
	HealthCheck(ctx context.Context) error

	// Name returns the provider name ("gemini" or "claude").
	Name() string

	// Close releases resources held by the provider.
	Close() error
}
