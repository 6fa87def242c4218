package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Hassanskary/unistay/internal/model"
)

// ReportRepo provides access to the reports table.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Create files a report in PENDING status and populates the
// generated ID.
func (r *ReportRepo) Create(ctx context.Context, rep *model.Report) error {
	const q = `INSERT INTO reports (reporter_id, home_id, reason, status) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rep.ReporterID, rep.HomeID, rep.Reason, model.ReportStatusPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	rep.Status = model.ReportStatusPending
	rep.CreatedAt = time.Now().UTC()
	return nil
}

// GetByID loads a report.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (model.Report, error) {
	const q = `SELECT id, reporter_id, home_id, reason, status, created_at, updated_at
	           FROM reports WHERE id=? LIMIT 1`
	var rep model.Report
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rep.ID, &rep.ReporterID, &rep.HomeID,
		&rep.Reason, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	return rep, err
}

// SetStatus moves a report to RESOLVED or REJECTED.  Only PENDING
// reports may transition; anything else yields ErrConflict.
func (r *ReportRepo) SetStatus(ctx context.Context, reportID uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reports SET status=? WHERE id=? AND status=?`,
		status, reportID, model.ReportStatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ReportRow joins a report with the home title and reporter name for
// admin review.
type ReportRow struct {
	ID           uint64 `json:"id"`
	HomeID       uint64 `json:"home_id"`
	HomeTitle    string `json:"home_title"`
	ReporterID   uint64 `json:"reporter_id"`
	ReporterName string `json:"reporter_name"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// List returns reports filtered by status (empty for all), oldest
// first so admins work a queue.
func (r *ReportRepo) List(ctx context.Context, status string) ([]ReportRow, error) {
	q := `SELECT rp.id, rp.home_id, h.title, rp.reporter_id, u.name, rp.reason, rp.status,
	             DATE_FORMAT(rp.created_at, '%Y-%m-%dT%TZ')
	      FROM reports rp
	      JOIN homes h ON h.id = rp.home_id
	      JOIN users u ON u.id = rp.reporter_id`
	args := []any{}
	if status != "" {
		q += ` WHERE rp.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY rp.id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReportRow, 0)
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(&row.ID, &row.HomeID, &row.HomeTitle, &row.ReporterID,
			&row.ReporterName, &row.Reason, &row.Status, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// BanRepo provides access to the bans table.
type BanRepo struct {
	db *sql.DB
}

// NewBanRepo returns a new BanRepo bound to the given database.
func NewBanRepo(db *sql.DB) *BanRepo { return &BanRepo{db: db} }

// Ban records an active ban for a user.  Banning an already banned
// user yields ErrConflict.
func (r *BanRepo) Ban(ctx context.Context, userID, adminID uint64, reason string) error {
	banned, err := r.IsBanned(ctx, userID)
	if err != nil {
		return err
	}
	if banned {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO bans (user_id, admin_id, reason) VALUES (?, ?, ?)`, userID, adminID, reason)
	return err
}

// Lift ends a user's active ban.  Lifting a user with no active ban
// yields ErrConflict.
func (r *BanRepo) Lift(ctx context.Context, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bans SET lifted_at = UTC_TIMESTAMP() WHERE user_id = ? AND lifted_at IS NULL`, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// IsBanned reports whether a user currently has an active ban.
func (r *BanRepo) IsBanned(ctx context.Context, userID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM bans WHERE user_id = ? AND lifted_at IS NULL LIMIT 1`, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns all bans, active first, newest first within each group.
func (r *BanRepo) List(ctx context.Context) ([]model.Ban, error) {
	const q = `SELECT id, user_id, admin_id, reason, lifted_at, created_at
	           FROM bans ORDER BY (lifted_at IS NULL) DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ban, 0)
	for rows.Next() {
		var b model.Ban
		var lifted sql.NullTime
		if err := rows.Scan(&b.ID, &b.UserID, &b.AdminID, &b.Reason, &lifted, &b.CreatedAt); err != nil {
			return nil, err
		}
		if lifted.Valid {
			t := lifted.Time
			b.LiftedAt = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
