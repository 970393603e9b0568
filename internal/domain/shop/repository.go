package shop

import "context"

// ShopRepository defines data access for host shops.
type ShopRepository interface {
	GetByID(ctx context.Context, id string) (Shop, error)

	// ListEligible returns active shops whose MOU is fully executed.
	ListEligible(ctx context.Context) ([]Shop, error)

	// IncrementApprentices bumps current_apprentices by one as a single
	// atomic store operation. Concurrent assignments to the same shop
	// must each land exactly once.
	IncrementApprentices(ctx context.Context, id string) error
}
