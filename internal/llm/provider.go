package llm

import "context"

// Provider is the abstraction over the hosted chat-completion API. Each call
// is independent: the full conversation is resent every time and no state is
// kept between calls.
type Provider interface {
	// Generate sends a prompt and conversation history to the model and
	// returns the reply text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system instruction fixing persona, tone, and scope.
	System string

	// Messages is the ordered conversation history.
	Messages []Message

	// MaxTokens bounds the reply length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness, 0.0-1.0.
	Temperature float64
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in the conversation history.
type Message struct {
	Role    Role
	Content string
}

// Response holds the model's reply.
type Response struct {
	// Text is the reply content. For models that segment output into
	// reasoning and answer parts, only the answer parts are included.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
