package domain

import "time"

// HistoryRecord captures one completion exchange, successful or not.
type HistoryRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	Reply     string    `json:"reply,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
}

// LastUserMessage returns the content of the final user turn, or "".
func (r HistoryRecord) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}
