package application

import (
	"context"
	"errors"
)

var ErrApplicationNotFound = errors.New("application not found")

// ApplicationRepository defines data access for apprentice applications.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (Application, error)
	SetAssignedShop(ctx context.Context, id string, shopID string) error
}
