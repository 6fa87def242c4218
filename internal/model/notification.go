package model

import "time"

// Notification kinds written by the service layer.
const (
	NotificationHomeApproved     = "HOME_APPROVED"
	NotificationHomeRejected     = "HOME_REJECTED"
	NotificationHomeBanned       = "HOME_BANNED"
	NotificationBookingCreated   = "BOOKING_CREATED"
	NotificationBookingConfirmed = "BOOKING_CONFIRMED"
	NotificationBookingCancelled = "BOOKING_CANCELLED"
	NotificationReportFiled      = "REPORT_FILED"
	NotificationReportResolved   = "REPORT_RESOLVED"
	NotificationReportRejected   = "REPORT_REJECTED"
)

// Notification is a per-user event row.  Every state change that
// concerns a user inserts one of these and then attempts a
// best-effort push over the websocket hub; only the push is retried,
// never the insert.
//
// Fields:
//  ID        - primary key identifier.
//  UserID    - recipient.
//  Kind      - one of the Notification* constants.
//  Message   - human readable text.
//  IsRead    - whether the user has acknowledged it.
//  CreatedAt - creation timestamp.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Kind      string    // notifications.kind
	Message   string    // notifications.message
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
