package routing

import "errors"

// Routing domain errors. Both are recoverable outcomes: the service folds
// them into a result with success=false rather than propagating.
var (
	ErrNoEligibleShops  = errors.New("no eligible shops found")
	ErrNoRecommendation = errors.New("no recommendation exists for this application and shop")
)
