package response

import (
	"errors"
	"net/http"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/alert"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/application"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/shop"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/site"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/timeclock"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]interface{}, len(validationErrs))
		for field, msg := range validationErrs.ToMap() {
			details[field] = msg
		}
		ValidationError(w, details)
		return
	}

	var accuracyErr *timeclock.AccuracyError
	if errors.As(err, &accuracyErr) {
		BadRequest(w, accuracyErr.Error(), map[string]interface{}{
			"accuracy_m":     accuracyErr.AccuracyM,
			"max_accuracy_m": accuracyErr.MaxAllowedM,
		})
		return
	}

	var geofenceErr *timeclock.GeofenceError
	if errors.As(err, &geofenceErr) {
		ForbiddenWithDetails(w, "GEOFENCE_VIOLATION", "Location is outside the site geofence", map[string]interface{}{
			"distance_m": geofenceErr.DistanceM,
			"radius_m":   geofenceErr.RadiusM,
		})
		return
	}

	var permissionErr *timeclock.PermissionError
	if errors.As(err, &permissionErr) {
		ForbiddenWithDetails(w, "PERMISSION_DENIED", permissionErr.Error(), map[string]interface{}{
			"reason": permissionErr.Reason,
			"state":  permissionErr.State,
		})
		return
	}

	// Timeclock domain errors
	switch {
	case errors.Is(err, timeclock.ErrShiftNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, site.ErrSiteNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, timeclock.ErrAlreadyClockedOut),
		errors.Is(err, timeclock.ErrShiftAlreadyClosed),
		errors.Is(err, timeclock.ErrLunchAlreadyStarted),
		errors.Is(err, timeclock.ErrLunchNotStarted),
		errors.Is(err, timeclock.ErrLunchAlreadyEnded):
		BadRequest(w, err.Error(), nil)

	// Routing domain errors
	case errors.Is(err, application.ErrApplicationNotFound):
		NotFound(w, "Application not found")
	case errors.Is(err, shop.ErrShopNotFound):
		NotFound(w, "Shop not found")
	case errors.Is(err, alert.ErrAlertNotFound):
		NotFound(w, "Alert not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
