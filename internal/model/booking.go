package model

import "time"

// Booking statuses.  PENDING bookings older than two days are
// flipped to EXPIRED lazily by the sweep that runs at the top of
// every booking read; an EXPIRED booking never reverts.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusPaid      = "PAID"
	BookingStatusRenewed   = "RENEWED"
	BookingStatusCancelled = "CANCELLED"
	BookingStatusExpired   = "EXPIRED"
)

// Payment methods.
const (
	PaymentMethodCash   = "CASH"
	PaymentMethodStripe = "STRIPE"
)

// Booking records a student's reservation of a room for a date
// range.  Amounts are prorated daily from the monthly room price
// (price_cents / 30 per day).  The owner ID is denormalized so that
// landlord listings do not need to join through rooms and homes.
//
// Fields:
//  ID          - primary key identifier.
//  UserID      - student who booked.
//  RoomID      - room being booked.
//  OwnerID     - landlord owning the room's home.
//  StartDate   - first day of the stay.
//  EndDate     - day after the last day of the stay; always after StartDate.
//  AmountCents - accumulated charge in cents.
//  Method      - CASH or STRIPE.
//  Status      - booking lifecycle status.
//  PaymentRef  - Stripe charge or checkout session id (nullable).
//  CreatedAt   - creation timestamp.
//  UpdatedAt   - last update timestamp.
type Booking struct {
	ID          uint64    // bookings.id
	UserID      uint64    // bookings.user_id
	RoomID      uint64    // bookings.room_id
	OwnerID     uint64    // bookings.owner_id
	StartDate   time.Time // bookings.start_date
	EndDate     time.Time // bookings.end_date
	AmountCents uint32    // bookings.amount_cents
	Method      string    // bookings.method
	Status      string    // bookings.status
	PaymentRef  *string   // bookings.payment_ref (nullable)
	CreatedAt   time.Time // bookings.created_at
	UpdatedAt   time.Time // bookings.updated_at
}
