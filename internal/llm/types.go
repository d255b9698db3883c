package llm

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message represents a simple chat message without tool calls.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
