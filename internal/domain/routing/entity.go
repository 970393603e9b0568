package routing

import "time"

// Decision values and reason codes emitted by a routing run.
const (
	DecisionRecommended = "recommended"
	DecisionNeedsReview = "needs_review"
	DecisionAssigned    = "assigned"

	ReasonHighConfidenceMatch  = "HIGH_CONFIDENCE_MATCH"
	ReasonManualReviewRequired = "MANUAL_REVIEW_REQUIRED"
	ReasonManualAssignment     = "MANUAL_ASSIGNMENT"
	ReasonNoEligibleShops      = "NO_ELIGIBLE_SHOPS"
)

// RoutingScore lifecycle states. A later run expires old recommendations
// rather than deleting them; they remain as historical record.
const (
	ScoreStatusRecommended = "recommended"
	ScoreStatusAssigned    = "assigned"
	ScoreStatusExpired     = "expired"
)

// Weights are the ruleset's component weights. Each component score is in
// [0,1], so the weighted total is too when the weights sum to 1.
type Weights struct {
	Distance   float64 `json:"distance"`
	Capacity   float64 `json:"capacity"`
	Specialty  float64 `json:"specialty"`
	Preference float64 `json:"preference"`
}

// Ruleset is the externally configurable routing policy, loaded from the
// store so operators can tune thresholds without a redeploy.
type Ruleset struct {
	Version             string
	MaxDistanceMiles    float64
	MinCapacity         int
	Weights             Weights
	AutoAssignThreshold float64
}

// DefaultRuleset is the documented fallback when no active ruleset row exists.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Version:          "default",
		MaxDistanceMiles: 25,
		MinCapacity:      1,
		Weights: Weights{
			Distance:   0.3,
			Capacity:   0.2,
			Specialty:  0.3,
			Preference: 0.2,
		},
		AutoAssignThreshold: 0.85,
	}
}

// Breakdown is the full scoring record persisted with each recommendation.
// It is the primary debugging and appeal artifact, so it carries the inputs
// alongside the sub-scores, not just the final number.
type Breakdown struct {
	DistanceMiles     *float64 `json:"distance_miles"`
	AvailableCapacity int      `json:"available_capacity"`
	Capacity          int      `json:"capacity"`
	Specialties       []string `json:"specialties"`
	Interests         []string `json:"interests"`
	MaxDistanceMiles  float64  `json:"max_distance_miles"`
	DistanceScore     float64  `json:"distance_score"`
	CapacityScore     float64  `json:"capacity_score"`
	SpecialtyScore    float64  `json:"specialty_score"`
	PreferenceScore   float64  `json:"preference_score"`
	Weights           Weights  `json:"weights"`
}

// Score is one persisted shop recommendation for an application.
type Score struct {
	ID            string
	ApplicationID string
	ShopID        string
	ShopName      string
	Rank          int
	TotalScore    float64
	Breakdown     Breakdown
	Status        string
	CreatedAt     time.Time
}

// Decision is an append-only audit record of an automated routing outcome.
type Decision struct {
	ID             string
	SubjectType    string
	SubjectID      string
	Decision       string
	ReasonCodes    []string
	InputSnapshot  map[string]interface{}
	RulesetVersion string
	Actor          string
	CreatedAt      time.Time
}

// ReviewItem is a routing decision parked for human resolution.
type ReviewItem struct {
	ID          string
	QueueType   string
	SubjectType string
	SubjectID   string
	Priority    int
	Reasons     []string
	Metadata    map[string]interface{}
	Status      string
	Resolution  *string
	CreatedAt   time.Time
}

const (
	ReviewQueueShopRouting = "shop_routing"
	ReviewStatusPending    = "pending"
	ReviewStatusResolved   = "resolved"
)
