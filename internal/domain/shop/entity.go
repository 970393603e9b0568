package shop

// MOU status gate: only fully executed MOUs make a shop eligible for routing.
const MOUStatusFullyExecuted = "fully_executed"

// Shop is a host shop profile. Read-mostly; CurrentApprentices is bumped
// by the assignment step through an atomic store-side increment.
type Shop struct {
	ID                 string
	Name               string
	Lat                *float64
	Lng                *float64
	Capacity           int
	CurrentApprentices int
	Specialties        []string
	MOUStatus          string
	Active             bool
}

// AvailableCapacity returns the number of open apprentice slots.
func (s *Shop) AvailableCapacity() int {
	return s.Capacity - s.CurrentApprentices
}

// HasCoordinates reports whether the shop has a usable location.
func (s *Shop) HasCoordinates() bool {
	return s.Lat != nil && s.Lng != nil
}
