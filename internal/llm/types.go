package llm

// Role identifies who a conversation message comes from.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a single chat completion call. Model overrides the
// provider's configured model when set.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse carries the generated text plus the token usage the
// caller reports back to the user. FinishReason distinguishes a complete
// answer from one truncated at MaxTokens.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
