package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/application"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/audit"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/routing"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/shop"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/geo"
)

// maxRecommendations caps how many scored shops are persisted and returned
// per routing run.
const maxRecommendations = 5

type RoutingServiceImpl struct {
	apps     application.ApplicationRepository
	shops    shop.ShopRepository
	rulesets routing.RulesetRepository
	scores   routing.ScoreRepository
	decision routing.DecisionRepository
	reviews  routing.ReviewQueueRepository
	audits   audit.Repository
}

func NewRoutingService(
	appRepo application.ApplicationRepository,
	shopRepo shop.ShopRepository,
	rulesetRepo routing.RulesetRepository,
	scoreRepo routing.ScoreRepository,
	decisionRepo routing.DecisionRepository,
	reviewRepo routing.ReviewQueueRepository,
	auditRepo audit.Repository,
) routing.RoutingService {
	return &RoutingServiceImpl{
		apps:     appRepo,
		shops:    shopRepo,
		rulesets: rulesetRepo,
		scores:   scoreRepo,
		decision: decisionRepo,
		reviews:  reviewRepo,
		audits:   auditRepo,
	}
}

func (r *RoutingServiceImpl) GetRoutingRecommendations(ctx context.Context, applicationID string) (routing.RoutingResult, error) {
	app, err := r.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, application.ErrApplicationNotFound) {
			return routing.RoutingResult{
				Success:         false,
				ApplicationID:   applicationID,
				Recommendations: []routing.Recommendation{},
				Error:           "Application not found",
			}, nil
		}
		return routing.RoutingResult{}, fmt.Errorf("failed to get application: %w", err)
	}

	ruleset, err := r.activeRuleset(ctx)
	if err != nil {
		return routing.RoutingResult{}, err
	}

	eligible, err := r.shops.ListEligible(ctx)
	if err != nil {
		return routing.RoutingResult{}, fmt.Errorf("failed to list eligible shops: %w", err)
	}

	scored := r.scoreShops(app, eligible, ruleset)
	if len(scored) == 0 {
		return r.handleNoEligibleShops(ctx, app, ruleset)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalScore > scored[j].TotalScore
	})
	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}

	if err := r.scores.ReplaceRecommendations(ctx, app.ID, scored); err != nil {
		return routing.RoutingResult{}, fmt.Errorf("failed to persist routing scores: %w", err)
	}

	result := routing.RoutingResult{
		Success:         true,
		ApplicationID:   app.ID,
		Recommendations: toRecommendations(scored),
		RulesetVersion:  ruleset.Version,
	}

	top := scored[0]
	if top.TotalScore >= ruleset.AutoAssignThreshold {
		result.Decision = routing.DecisionRecommended
		decisionID, err := r.recordDecision(ctx, app, ruleset, routing.DecisionRecommended,
			[]string{routing.ReasonHighConfidenceMatch}, scored)
		if err != nil {
			return routing.RoutingResult{}, err
		}
		result.DecisionID = decisionID
	} else {
		result.Decision = routing.DecisionNeedsReview
		decisionID, err := r.recordDecision(ctx, app, ruleset, routing.DecisionNeedsReview,
			[]string{routing.ReasonManualReviewRequired}, scored)
		if err != nil {
			return routing.RoutingResult{}, err
		}
		result.DecisionID = decisionID

		item, err := r.reviews.Create(ctx, routing.ReviewItem{
			ID:          uuid.New().String(),
			QueueType:   routing.ReviewQueueShopRouting,
			SubjectType: "application",
			SubjectID:   app.ID,
			Priority:    3,
			Reasons:     []string{routing.ReasonManualReviewRequired},
			Metadata: map[string]interface{}{
				"top_score":            top.TotalScore,
				"recommendation_count": len(scored),
			},
			Status: routing.ReviewStatusPending,
		})
		if err != nil {
			return routing.RoutingResult{}, fmt.Errorf("failed to create review queue item: %w", err)
		}
		result.ReviewQueueID = item.ID
	}

	r.appendAudit(ctx, audit.Entry{
		ID:         uuid.New().String(),
		Action:     "shop_recommendations_generated",
		TargetType: "application",
		TargetID:   app.ID,
		Metadata: map[string]interface{}{
			"recommendation_count": len(scored),
			"top_score":            top.TotalScore,
			"decision":             result.Decision,
			"ruleset_version":      ruleset.Version,
		},
	})

	return result, nil
}

func (r *RoutingServiceImpl) AssignToShop(ctx context.Context, applicationID, shopID, assignedBy string) (routing.AssignResult, error) {
	fail := func(err error) (routing.AssignResult, error) {
		return routing.AssignResult{
			Success:       false,
			ApplicationID: applicationID,
			ShopID:        shopID,
			Error:         err.Error(),
		}, nil
	}

	if _, err := r.apps.GetByID(ctx, applicationID); err != nil {
		return fail(err)
	}
	if _, err := r.shops.GetByID(ctx, shopID); err != nil {
		return fail(err)
	}

	status, err := r.scores.GetStatus(ctx, applicationID, shopID)
	if err != nil {
		return fail(fmt.Errorf("failed to read routing score: %w", err))
	}
	if status == "" {
		return fail(routing.ErrNoRecommendation)
	}

	// The guarded transition is the exactly-once gate: only the call that
	// flips recommended to assigned may increment the shop counter, and the
	// increment follows the flip immediately so a failure later in the
	// sequence cannot strand it. A retry after partial failure re-runs the
	// remaining steps without a second increment.
	if status != routing.ScoreStatusAssigned {
		assigned, err := r.scores.MarkAssigned(ctx, applicationID, shopID)
		if err != nil {
			return fail(fmt.Errorf("failed to mark score assigned: %w", err))
		}
		if assigned {
			if err := r.shops.IncrementApprentices(ctx, shopID); err != nil {
				return fail(fmt.Errorf("failed to increment shop capacity: %w", err))
			}
		}
	}

	if err := r.scores.ExpireOthers(ctx, applicationID, shopID); err != nil {
		return fail(fmt.Errorf("failed to expire other recommendations: %w", err))
	}

	if err := r.apps.SetAssignedShop(ctx, applicationID, shopID); err != nil {
		return fail(fmt.Errorf("failed to update application: %w", err))
	}

	resolution := fmt.Sprintf("Assigned to shop %s by %s", shopID, assignedBy)
	if err := r.reviews.ResolveForSubject(ctx, applicationID, resolution); err != nil {
		return fail(fmt.Errorf("failed to resolve review queue: %w", err))
	}

	decision, err := r.decision.Create(ctx, routing.Decision{
		ID:          uuid.New().String(),
		SubjectType: "application",
		SubjectID:   applicationID,
		Decision:    routing.DecisionAssigned,
		ReasonCodes: []string{routing.ReasonManualAssignment},
		InputSnapshot: map[string]interface{}{
			"application_id": applicationID,
			"shop_id":        shopID,
		},
		Actor: assignedBy,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to record assignment decision: %w", err))
	}

	actor := assignedBy
	r.appendAudit(ctx, audit.Entry{
		ID:         uuid.New().String(),
		Action:     "apprentice_assigned_to_shop",
		TargetType: "application",
		TargetID:   applicationID,
		ActorID:    &actor,
		Metadata: map[string]interface{}{
			"shop_id": shopID,
		},
	})

	return routing.AssignResult{
		Success:       true,
		ApplicationID: applicationID,
		ShopID:        shopID,
		DecisionID:    decision.ID,
	}, nil
}

// activeRuleset loads the configured ruleset, falling back to the built-in
// default when no active row exists.
func (r *RoutingServiceImpl) activeRuleset(ctx context.Context) (routing.Ruleset, error) {
	rs, err := r.rulesets.GetActive(ctx)
	if err != nil {
		return routing.Ruleset{}, fmt.Errorf("failed to load routing ruleset: %w", err)
	}
	if rs == nil {
		return routing.DefaultRuleset(), nil
	}
	return *rs, nil
}

// scoreShops applies the hard filters and computes a weighted score for
// every surviving shop. Shops past the commute limit or below the capacity
// floor are dropped, not scored low.
func (r *RoutingServiceImpl) scoreShops(app application.Application, shops []shop.Shop, ruleset routing.Ruleset) []routing.Score {
	maxMiles := ruleset.MaxDistanceMiles
	if app.MaxCommuteMiles != nil && *app.MaxCommuteMiles > 0 {
		maxMiles = *app.MaxCommuteMiles
	}

	scored := make([]routing.Score, 0, len(shops))
	for _, s := range shops {
		available := s.AvailableCapacity()
		if available < ruleset.MinCapacity {
			continue
		}

		var distanceMiles *float64
		ds := neutralScore
		if app.HasCoordinates() && s.HasCoordinates() {
			d := geo.DistanceMiles(*app.Lat, *app.Lng, *s.Lat, *s.Lng)
			if d > maxMiles {
				continue
			}
			distanceMiles = &d
			ds = distanceScore(d, maxMiles)
		}

		cs := capacityScore(available)
		ss := specialtyScore(app.SpecialtyInterests, s.Specialties)
		ps := preferenceScore()

		scored = append(scored, routing.Score{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			ShopID:        s.ID,
			ShopName:      s.Name,
			TotalScore:    totalScore(ruleset.Weights, ds, cs, ss, ps),
			Breakdown: routing.Breakdown{
				DistanceMiles:     distanceMiles,
				AvailableCapacity: available,
				Capacity:          s.Capacity,
				Specialties:       s.Specialties,
				Interests:         app.SpecialtyInterests,
				MaxDistanceMiles:  maxMiles,
				DistanceScore:     ds,
				CapacityScore:     cs,
				SpecialtyScore:    ss,
				PreferenceScore:   ps,
				Weights:           ruleset.Weights,
			},
			Status: routing.ScoreStatusRecommended,
		})
	}

	return scored
}

// toRecommendations converts persisted score rows into the caller-facing
// view.
func toRecommendations(scored []routing.Score) []routing.Recommendation {
	recs := make([]routing.Recommendation, 0, len(scored))
	for _, s := range scored {
		recs = append(recs, routing.Recommendation{
			ShopID:            s.ShopID,
			ShopName:          s.ShopName,
			Rank:              s.Rank,
			TotalScore:        s.TotalScore,
			DistanceMiles:     s.Breakdown.DistanceMiles,
			AvailableCapacity: s.Breakdown.AvailableCapacity,
			Breakdown:         s.Breakdown,
		})
	}
	return recs
}

// handleNoEligibleShops records the empty run as a high-priority review item
// so an operator sees the applicant instead of the applicant silently
// stalling.
func (r *RoutingServiceImpl) handleNoEligibleShops(ctx context.Context, app application.Application, ruleset routing.Ruleset) (routing.RoutingResult, error) {
	decisionID, err := r.recordDecision(ctx, app, ruleset, routing.DecisionNeedsReview,
		[]string{routing.ReasonNoEligibleShops}, nil)
	if err != nil {
		return routing.RoutingResult{}, err
	}

	item, err := r.reviews.Create(ctx, routing.ReviewItem{
		ID:          uuid.New().String(),
		QueueType:   routing.ReviewQueueShopRouting,
		SubjectType: "application",
		SubjectID:   app.ID,
		Priority:    1,
		Reasons:     []string{routing.ReasonNoEligibleShops},
		Status:      routing.ReviewStatusPending,
	})
	if err != nil {
		return routing.RoutingResult{}, fmt.Errorf("failed to create review queue item: %w", err)
	}

	return routing.RoutingResult{
		Success:         false,
		ApplicationID:   app.ID,
		Decision:        routing.DecisionNeedsReview,
		Recommendations: []routing.Recommendation{},
		DecisionID:      decisionID,
		ReviewQueueID:   item.ID,
		RulesetVersion:  ruleset.Version,
		Error:           routing.ErrNoEligibleShops.Error(),
	}, nil
}

func (r *RoutingServiceImpl) recordDecision(ctx context.Context, app application.Application, ruleset routing.Ruleset, decision string, reasons []string, scored []routing.Score) (string, error) {
	snapshot := map[string]interface{}{
		"application_id":      app.ID,
		"applicant_lat":       app.Lat,
		"applicant_lng":       app.Lng,
		"specialty_interests": app.SpecialtyInterests,
		"max_commute_miles":   app.MaxCommuteMiles,
	}

	topN := scored
	if len(topN) > 3 {
		topN = topN[:3]
	}
	top := make([]map[string]interface{}, 0, len(topN))
	for _, s := range topN {
		top = append(top, map[string]interface{}{
			"shop_id":     s.ShopID,
			"shop_name":   s.ShopName,
			"rank":        s.Rank,
			"total_score": s.TotalScore,
		})
	}
	snapshot["top_recommendations"] = top

	d, err := r.decision.Create(ctx, routing.Decision{
		ID:             uuid.New().String(),
		SubjectType:    "application",
		SubjectID:      app.ID,
		Decision:       decision,
		ReasonCodes:    reasons,
		InputSnapshot:  snapshot,
		RulesetVersion: ruleset.Version,
		Actor:          "system",
	})
	if err != nil {
		return "", fmt.Errorf("failed to record automated decision: %w", err)
	}
	return d.ID, nil
}

// appendAudit writes the audit row best-effort. A failed audit write is
// logged, not surfaced; the routing outcome itself already happened.
func (r *RoutingServiceImpl) appendAudit(ctx context.Context, entry audit.Entry) {
	if err := r.audits.Append(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append audit log entry",
			slog.String("action", entry.Action),
			slog.String("target_id", entry.TargetID),
			slog.Any("error", err),
		)
	}
}
