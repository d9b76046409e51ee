package models

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// QueryRequest is the chat query payload sent by the UI
type QueryRequest struct {
	ModelName     string        `json:"model_name"`               // DeepSeek, Gemini or ChatGPT
	APIKey        string        `json:"api_key"`                  // Never persisted or logged
	Prompt        string        `json:"prompt"`                   // The current user message
	SystemMessage string        `json:"system_message,omitempty"` // Optional system instruction
	ChatHistory   []ChatMessage `json:"chat_history,omitempty"`   // Prior turns, oldest first
	UseRAG        bool          `json:"use_rag"`                  // Splice retrieved context into the prompt
	DBPath        string        `json:"db_path,omitempty"`        // Store name or path to search
	Temperature   *float64      `json:"temperature,omitempty"`    // 0.0 - 2.0, default 0.7
	MaxTokens     *int          `json:"max_tokens,omitempty"`     // default 1000
}

// QueryResponse is the normalized chat result. Business failures keep HTTP 200 and set Success=false.
type QueryResponse struct {
	Response     string    `json:"response"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
}

// FailedQuery builds a failed QueryResponse from a classified error
func FailedQuery(err error) QueryResponse {
	return QueryResponse{
		Success:      false,
		ErrorMessage: err.Error(),
		ErrorKind:    KindOf(err),
	}
}

// Preset is a named system message offered by the UI
type Preset struct {
	Name          string `json:"name" yaml:"name"`
	SystemMessage string `json:"system_message" yaml:"system_message"`
}

// StatusResponse is returned by the root and health endpoints
type StatusResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// SessionInfo describes the server-side state of a chat session
type SessionInfo struct {
	ID            string `json:"session_id"`
	SelectedStore string `json:"selected_store,omitempty"`
	SystemMessage string `json:"system_message,omitempty"`
	UseRAG        bool   `json:"use_rag"`
	HistoryLength int    `json:"history_length"`
}

// SessionUpdate changes the session defaults. Nil fields are left alone; an
// empty store clears the selection and an empty system message restores the default.
type SessionUpdate struct {
	Store         *string `json:"store,omitempty"`
	Preset        *string `json:"preset,omitempty"`
	SystemMessage *string `json:"system_message,omitempty"`
}

// HealthResponse reports liveness and the circuit breaker state per provider
type HealthResponse struct {
	Status   string            `json:"status"`
	Breakers map[string]string `json:"breakers,omitempty"`
}
