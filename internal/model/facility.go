package model

// Facility is an amenity (wifi, kitchen, laundry...) that homes can
// advertise.  Facilities are managed by admins; owners attach them
// to homes through the home_facilities join table.
type Facility struct {
	ID   uint64 // facilities.id
	Name string // facilities.name
}
