package model

import "time"

// Approval lifecycle of a listed home.  Only APPROVED homes are
// visible to students; the rest are shown only to their owner and
// to admins.
const (
	HomeStatusPending  = "PENDING_APPROVAL"
	HomeStatusApproved = "APPROVED"
	HomeStatusRejected = "REJECTED"
	HomeStatusBanned   = "BANNED"
)

// Gender restrictions for a home.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderMixed  = "MIXED"
)

// Home types.
const (
	HomeTypeApartment = "APARTMENT"
	HomeTypeVilla     = "VILLA"
	HomeTypeShared    = "SHARED"
)

// Home represents a listed property owned by an OWNER user.  A home
// contains one or more bookable rooms.  Every create or update puts
// the home back into PENDING_APPROVAL until an admin reviews it.
//
// Fields:
//  ID            - primary key identifier.
//  OwnerID       - user ID of the landlord.
//  Title         - listing title.
//  Description   - free-form description.
//  City          - city the home is located in.
//  Gender        - gender restriction (MALE, FEMALE, MIXED).
//  HomeType      - APARTMENT, VILLA or SHARED.
//  Floor         - floor number of the unit.
//  DistanceM     - distance to the university in meters.
//  ContractPhoto - relative path of the uploaded ownership contract scan.
//  Status        - approval status.
//  CreatedAt     - creation timestamp.
//  UpdatedAt     - last update timestamp.
type Home struct {
	ID            uint64    // homes.id
	OwnerID       uint64    // homes.owner_id
	Title         string    // homes.title
	Description   string    // homes.description
	City          string    // homes.city
	Gender        string    // homes.gender
	HomeType      string    // homes.home_type
	Floor         int       // homes.floor
	DistanceM     int       // homes.distance_m
	ContractPhoto string    // homes.contract_photo
	Status        string    // homes.status
	CreatedAt     time.Time // homes.created_at
	UpdatedAt     time.Time // homes.updated_at
}

// HomePhoto is a gallery photo attached to a home.  Photos live on
// disk under the uploads directory; only the relative path is stored.
type HomePhoto struct {
	ID       uint64 // home_photos.id
	HomeID   uint64 // home_photos.home_id
	Path     string // home_photos.path
	Position int    // home_photos.position
}
