package ai

import "context"

// ChatProvider sends a single chat completion and returns the reply text.
type ChatProvider interface {
	Name() ProviderName

	// Chat sends a chat completion request.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Message represents a single message in the conversation.
type Message struct {
	Role    MessageRole
	Content string
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatResponse represents the response from a chat completion.
type ChatResponse struct {
	Model   string
	Content string
	Usage   Usage
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// SystemMessage is a convenience constructor
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage is a convenience constructor
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
