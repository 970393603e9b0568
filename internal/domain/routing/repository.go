package routing

import "context"

// RulesetRepository loads the active routing policy. A missing row is not
// an error; callers fall back to DefaultRuleset.
type RulesetRepository interface {
	GetActive(ctx context.Context) (*Ruleset, error)
}

// ScoreRepository persists routing recommendations.
type ScoreRepository interface {
	// ReplaceRecommendations atomically expires the application's live
	// recommendations and inserts the scores of the new run. Old rows are
	// kept, never deleted; a failed run leaves the previous recommendations
	// untouched.
	ReplaceRecommendations(ctx context.Context, applicationID string, scores []Score) error

	// GetStatus returns the status of the score row for the pair, or ""
	// when no row exists.
	GetStatus(ctx context.Context, applicationID, shopID string) (string, error)

	// MarkAssigned flips one recommended row to assigned. Returns false when
	// no recommended row matched, which makes a repeated assignment call a
	// detectable no-op.
	MarkAssigned(ctx context.Context, applicationID, shopID string) (bool, error)

	// ExpireOthers expires every recommended row except the assigned shop's.
	ExpireOthers(ctx context.Context, applicationID, shopID string) error
}

// DecisionRepository appends automated decision audit rows.
type DecisionRepository interface {
	Create(ctx context.Context, d Decision) (Decision, error)
}

// ReviewQueueRepository manages routing review items.
type ReviewQueueRepository interface {
	Create(ctx context.Context, item ReviewItem) (ReviewItem, error)

	// ResolveForSubject closes any pending routing review item for the
	// subject with a resolution note. Resolving nothing is not an error.
	ResolveForSubject(ctx context.Context, subjectID string, resolution string) error
}
