// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when an owner confirms a cash booking.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	OwnerID     uint64 `json:"owner_id"`
	HomeID      uint64 `json:"home_id"`
	HomeTitle   string `json:"home_title"`
	RoomID      uint64 `json:"room_id"`
	RoomNumber  string `json:"room_number"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	AmountCents uint32 `json:"amount_cents"`
	ConfirmedAt string `json:"confirmed_at"`
}

// BookingPaidEvent is published when a booking is paid through the card
// processor, either directly or via a completed checkout session.
type BookingPaidEvent struct {
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	OwnerID     uint64 `json:"owner_id"`
	HomeID      uint64 `json:"home_id"`
	HomeTitle   string `json:"home_title"`
	RoomID      uint64 `json:"room_id"`
	AmountCents uint32 `json:"amount_cents"`
	PaymentRef  string `json:"payment_ref"`
	PaidAt      string `json:"paid_at"`
}
