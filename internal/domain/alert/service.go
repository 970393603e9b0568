package alert

import "context"

// AlertService is the admin surface over raised alerts.
type AlertService interface {
	List(ctx context.Context, resolved *bool, limit int) ([]Alert, error)
	Resolve(ctx context.Context, id string) error
}
