package routing

// Recommendation is the caller-facing view of one scored shop.
type Recommendation struct {
	ShopID            string    `json:"shop_id"`
	ShopName          string    `json:"shop_name"`
	Rank              int       `json:"rank"`
	TotalScore        float64   `json:"total_score"`
	DistanceMiles     *float64  `json:"distance_miles"`
	AvailableCapacity int       `json:"available_capacity"`
	Breakdown         Breakdown `json:"score_breakdown"`
}

// RoutingResult is the outcome of one routing run. "application not found"
// and "no eligible shops" come back as success=false with an error string,
// never as a raised error.
type RoutingResult struct {
	Success         bool             `json:"success"`
	ApplicationID   string           `json:"application_id"`
	Decision        string           `json:"decision,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	DecisionID      string           `json:"decision_id,omitempty"`
	ReviewQueueID   string           `json:"review_queue_id,omitempty"`
	RulesetVersion  string           `json:"ruleset_version,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// AssignResult is the outcome of a manual shop assignment.
type AssignResult struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"application_id"`
	ShopID        string `json:"shop_id"`
	DecisionID    string `json:"decision_id,omitempty"`
	Error         string `json:"error,omitempty"`
}
