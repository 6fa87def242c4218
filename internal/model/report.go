package model

import "time"

// Report statuses.  Resolving a report bans the reported home;
// rejecting it leaves the home untouched.
const (
	ReportStatusPending  = "PENDING"
	ReportStatusResolved = "RESOLVED"
	ReportStatusRejected = "REJECTED"
)

// Report is a user complaint about a home listing, reviewed by an
// admin.
//
// Fields:
//  ID         - primary key identifier.
//  ReporterID - user who filed the report.
//  HomeID     - reported home.
//  Reason     - free-form complaint text.
//  Status     - PENDING, RESOLVED or REJECTED.
//  CreatedAt  - creation timestamp.
//  UpdatedAt  - last update timestamp.
type Report struct {
	ID         uint64    // reports.id
	ReporterID uint64    // reports.reporter_id
	HomeID     uint64    // reports.home_id
	Reason     string    // reports.reason
	Status     string    // reports.status
	CreatedAt  time.Time // reports.created_at
	UpdatedAt  time.Time // reports.updated_at
}

// Ban blocks a user from creating bookings, comments, ratings,
// reports and chats.  A ban is active while lifted_at is null.
type Ban struct {
	ID        uint64     // bans.id
	UserID    uint64     // bans.user_id
	AdminID   uint64     // bans.admin_id
	Reason    string     // bans.reason
	LiftedAt  *time.Time // bans.lifted_at (nullable)
	CreatedAt time.Time  // bans.created_at
}
