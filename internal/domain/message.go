// Package domain defines the core entities for quest.
//
// The domain layer carries the conversation model sent to the completion
// endpoint and the records kept about each exchange. It has no knowledge of
// HTTP, SQLite or the CLI.
package domain

// Role tags a chat message with its speaker.
type Role string

// Conversational roles accepted by chat-completion APIs.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation. Slice order encodes history.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Known reports whether r is one of the roles declared above.
func (r Role) Known() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}
