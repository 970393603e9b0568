package audit

import "context"

// Repository appends audit log entries. The log is append-only; there is
// no update or delete surface.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
}
