package alert

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Recorder raises admin alerts as a fire-and-forget side effect. A failed
// write is logged, never returned: alert persistence must not block the
// primary timeclock action.
type Recorder struct {
	repo AlertRepository
}

func NewRecorder(repo AlertRepository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Record(ctx context.Context, details Details) {
	payload, err := json.Marshal(details)
	if err != nil {
		slog.Error("Failed to marshal admin alert details", "alert_type", details.AlertType(), "error", err)
		return
	}

	_, err = r.repo.Create(ctx, Alert{
		Type:     details.AlertType(),
		Severity: SeverityWarning,
		Details:  payload,
	})
	if err != nil {
		slog.Error("Failed to raise admin alert", "alert_type", details.AlertType(), "error", err)
	}
}
