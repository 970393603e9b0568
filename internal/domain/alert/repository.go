package alert

import "context"

// AlertRepository defines data access for admin alerts.
type AlertRepository interface {
	Create(ctx context.Context, a Alert) (Alert, error)
	List(ctx context.Context, resolved *bool, limit int) ([]Alert, error)
	Resolve(ctx context.Context, id string) error
}
