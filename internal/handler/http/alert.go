package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/alert"
	"github.com/tradelaunch/apprentice-backend-go/internal/handler/http/response"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/validator"
)

type AlertHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
}

type alertHandlerImpl struct {
	alertService alert.AlertService
}

func NewAlertHandler(alertService alert.AlertService) AlertHandler {
	return &alertHandlerImpl{
		alertService: alertService,
	}
}

// List implements AlertHandler.
func (h *alertHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var resolved *bool
	if v := r.URL.Query().Get("resolved"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "resolved must be true or false", nil)
			return
		}
		resolved = &parsed
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	alerts, err := h.alertService.List(r.Context(), resolved, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, alerts)
}

// Resolve implements AlertHandler.
func (h *alertHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")
	if !validator.IsValidUUID(alertID) {
		response.BadRequest(w, "Invalid alert id", nil)
		return
	}

	if err := h.alertService.Resolve(r.Context(), alertID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Alert resolved", nil)
}
