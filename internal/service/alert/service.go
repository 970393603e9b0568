package alert

import (
	"context"
	"fmt"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/alert"
)

type AlertServiceImpl struct {
	alerts alert.AlertRepository
}

func NewAlertService(alertRepo alert.AlertRepository) alert.AlertService {
	return &AlertServiceImpl{alerts: alertRepo}
}

func (a *AlertServiceImpl) List(ctx context.Context, resolved *bool, limit int) ([]alert.Alert, error) {
	alerts, err := a.alerts.List(ctx, resolved, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (a *AlertServiceImpl) Resolve(ctx context.Context, id string) error {
	if err := a.alerts.Resolve(ctx, id); err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	return nil
}
