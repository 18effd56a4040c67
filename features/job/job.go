package job

import (
	"encoding/json"
	"time"
)

// Job records one failed embedding-bundle build pulled off the queue, kept
// so an operator can inspect and replay it.
type Job struct {
	ID        string          `json:"id"`
	Lecture   string          `json:"lecture"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	Error     string          `json:"error"`
	Retries   int             `json:"retries"`
	CreatedAt time.Time       `json:"created_at"`
}
