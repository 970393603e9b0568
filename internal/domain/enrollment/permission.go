package enrollment

import "context"

// Action is the enrollment-gated operation being attempted.
type Action string

const (
	ActionClockIn  Action = "CLOCK_IN"
	ActionClockOut Action = "CLOCK_OUT"
)

// Permission is the collaborator's verdict. On denial the timeclock engine
// surfaces Message, Reason and State to the caller verbatim.
type Permission struct {
	Allowed bool
	Message string
	Reason  string
	State   string
}

// Checker decides whether an apprentice may perform a timeclock action.
// The enrollment subsystem owns the policy; this engine only consumes it.
type Checker interface {
	Check(ctx context.Context, apprenticeID string, action Action, partnerID string) (Permission, error)

	// LogCheck records the outcome of a permission check for forensics.
	// Failures are the implementation's concern; callers treat it as
	// fire-and-forget.
	LogCheck(ctx context.Context, apprenticeID string, action Action, p Permission, partnerID string)
}
