package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/timeclock"
	"github.com/tradelaunch/apprentice-backend-go/internal/handler/http/response"
)

type TimeclockHandler interface {
	Action(w http.ResponseWriter, r *http.Request)
	Heartbeat(w http.ResponseWriter, r *http.Request)
	ListShifts(w http.ResponseWriter, r *http.Request)
}

type timeclockHandlerImpl struct {
	timeclockService timeclock.TimeclockService
}

func NewTimeclockHandler(timeclockService timeclock.TimeclockService) TimeclockHandler {
	return &timeclockHandlerImpl{
		timeclockService: timeclockService,
	}
}

// Action implements TimeclockHandler. One endpoint serves all four shift
// transitions, dispatching on the action field. Response bodies are the
// published per-action contract, so they are written raw.
func (h *timeclockHandlerImpl) Action(w http.ResponseWriter, r *http.Request) {
	var req timeclock.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	var result interface{}
	var err error

	switch req.Action {
	case timeclock.ActionClockIn:
		result, err = h.timeclockService.ClockIn(r.Context(), req)
	case timeclock.ActionLunchStart:
		result, err = h.timeclockService.LunchStart(r.Context(), req)
	case timeclock.ActionLunchEnd:
		result, err = h.timeclockService.LunchEnd(r.Context(), req)
	case timeclock.ActionClockOut:
		result, err = h.timeclockService.ClockOut(r.Context(), req)
	}

	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Raw(w, http.StatusOK, result)
}

// Heartbeat implements TimeclockHandler.
func (h *timeclockHandlerImpl) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req timeclock.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeclockService.Heartbeat(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Raw(w, http.StatusOK, result)
}

// ListShifts implements TimeclockHandler.
func (h *timeclockHandlerImpl) ListShifts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	filter := timeclock.ShiftFilter{
		ApprenticeID: r.URL.Query().Get("apprentice_id"),
		Page:         page,
		Limit:        limit,
	}

	result, err := h.timeclockService.ListShifts(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}

	response.SuccessWithMeta(w, result.Shifts, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}
