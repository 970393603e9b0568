package application

// Application is the routing input: where the applicant is, what they want
// to learn, and how far they will travel.
type Application struct {
	ID                 string
	UserID             string
	ProgramID          string
	Lat                *float64
	Lng                *float64
	SpecialtyInterests []string
	MaxCommuteMiles    *float64
	AssignedShopID     *string
	Status             string
}

// HasCoordinates reports whether the applicant has a usable location.
func (a *Application) HasCoordinates() bool {
	return a.Lat != nil && a.Lng != nil
}
