package admission

import (
	"time"

	"github.com/google/uuid"
)

// Violation records one rate limit denial for observability. Violations are
// best-effort: failing to record one never fails the request path.
type Violation struct {
	ID            uuid.UUID `json:"id"`
	ClientKey     string    `json:"client_key"`
	Tier          Tier      `json:"tier"`
	Path          string    `json:"path"`
	Method        string    `json:"method"`
	ObservedCount int       `json:"observed_count"`
	Limit         int       `json:"limit"`
	Timestamp     time.Time `json:"timestamp"`
}
