package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn of a conversation. Order within a transcript is significant.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to POST /api/chat. The whole transcript is resent on every call.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// ChatResponse is the successful reply from the relay.
type ChatResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-200 relay response.
type ErrorResponse struct {
	Error string `json:"error"`
}
