package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/routing"
	"github.com/tradelaunch/apprentice-backend-go/internal/handler/http/response"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/validator"
)

type RoutingHandler interface {
	Recommend(w http.ResponseWriter, r *http.Request)
	Assign(w http.ResponseWriter, r *http.Request)
}

type routingHandlerImpl struct {
	routingService routing.RoutingService
}

func NewRoutingHandler(routingService routing.RoutingService) RoutingHandler {
	return &routingHandlerImpl{
		routingService: routingService,
	}
}

// Recommend implements RoutingHandler. The result carries its own success
// flag; "application not found" and "no eligible shops" come back in the
// body, not as HTTP errors.
func (h *routingHandlerImpl) Recommend(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")
	if !validator.IsValidUUID(applicationID) {
		response.BadRequest(w, "Invalid application id", nil)
		return
	}

	result, err := h.routingService.GetRoutingRecommendations(r.Context(), applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Raw(w, http.StatusOK, result)
}

type assignRequest struct {
	ShopID string `json:"shop_id"`
}

// Assign implements RoutingHandler. The assigning staff member is taken
// from the access token, not the request body.
func (h *routingHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")
	if !validator.IsValidUUID(applicationID) {
		response.BadRequest(w, "Invalid application id", nil)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if !validator.IsValidUUID(req.ShopID) {
		response.BadRequest(w, "Invalid shop id", nil)
		return
	}

	assignedBy := "unknown"
	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			assignedBy = userID
		}
	}

	result, err := h.routingService.AssignToShop(r.Context(), applicationID, req.ShopID, assignedBy)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Raw(w, http.StatusOK, result)
}
