package audit

import "time"

// Entry is one append-only audit log row.
type Entry struct {
	ID         string
	Action     string
	TargetType string
	TargetID   string
	ActorID    *string
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}
