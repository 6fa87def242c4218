package model

import "time"

// Room describes a bookable unit within a home.  Rooms track a bed
// count that is decremented when a booking is confirmed or paid; the
// room is marked completed exactly when the count reaches zero.
//
// Fields:
//  ID          - primary key identifier.
//  HomeID      - home to which this room belongs.
//  Number      - room number or label within the home.
//  Beds        - remaining free beds; never negative.
//  PriceCents  - monthly price in cents.
//  IsCompleted - true while no beds remain.
//  Photo       - relative path of the room photo (empty when none).
//  CreatedAt   - creation timestamp.
//  UpdatedAt   - last update timestamp.
type Room struct {
	ID          uint64    // rooms.id
	HomeID      uint64    // rooms.home_id
	Number      string    // rooms.number
	Beds        uint32    // rooms.beds
	PriceCents  uint32    // rooms.price_cents
	IsCompleted bool      // rooms.is_completed
	Photo       string    // rooms.photo
	CreatedAt   time.Time // rooms.created_at
	UpdatedAt   time.Time // rooms.updated_at
}
