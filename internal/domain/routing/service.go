package routing

import "context"

// RoutingService ranks eligible shops for an application and records the
// automated decision trail.
type RoutingService interface {
	// GetRoutingRecommendations scores all eligible shops, persists the top
	// five, and classifies the run as recommended or needs_review.
	GetRoutingRecommendations(ctx context.Context, applicationID string) (RoutingResult, error)

	// AssignToShop applies a manual assignment: score transition, counter
	// increment, review resolution, decision and audit rows.
	AssignToShop(ctx context.Context, applicationID, shopID, assignedBy string) (AssignResult, error)
}
