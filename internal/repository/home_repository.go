package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Hassanskary/unistay/internal/model"
)

// HomeRepo provides CRUD operations for homes, their gallery photos
// and their facility assignments.  All timestamp fields are assumed
// to be stored in UTC.
type HomeRepo struct {
	db *sql.DB
}

// NewHomeRepo returns a new HomeRepo bound to the given database.
func NewHomeRepo(db *sql.DB) *HomeRepo { return &HomeRepo{db: db} }

const homeColumns = "id, owner_id, title, description, city, gender, home_type, floor, distance_m, contract_photo, status, created_at, updated_at"

// Create inserts a new home in PENDING_APPROVAL status and populates
// the generated ID on the provided record.
func (r *HomeRepo) Create(ctx context.Context, h *model.Home) error {
	const q = `INSERT INTO homes (owner_id, title, description, city, gender, home_type, floor, distance_m, contract_photo, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, h.OwnerID, h.Title, h.Description, h.City,
		h.Gender, h.HomeType, h.Floor, h.DistanceM, h.ContractPhoto, model.HomeStatusPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	h.Status = model.HomeStatusPending
	return nil
}

// Update rewrites the mutable listing fields and resets the home to
// PENDING_APPROVAL.  It returns ErrHomeNotFound when the home does
// not exist and ErrForbidden when it belongs to a different owner.
func (r *HomeRepo) Update(ctx context.Context, h *model.Home, ownerID uint64) error {
	cur, err := r.GetByID(ctx, h.ID)
	if err != nil {
		return err
	}
	if cur.OwnerID != ownerID {
		return ErrForbidden
	}
	if h.ContractPhoto != "" {
		const q = `UPDATE homes SET title=?, description=?, city=?, gender=?, home_type=?, floor=?, distance_m=?, contract_photo=?, status=? WHERE id=?`
		_, err = r.db.ExecContext(ctx, q, h.Title, h.Description, h.City, h.Gender,
			h.HomeType, h.Floor, h.DistanceM, h.ContractPhoto, model.HomeStatusPending, h.ID)
		return err
	}
	const q = `UPDATE homes SET title=?, description=?, city=?, gender=?, home_type=?, floor=?, distance_m=?, status=? WHERE id=?`
	_, err = r.db.ExecContext(ctx, q, h.Title, h.Description, h.City, h.Gender,
		h.HomeType, h.Floor, h.DistanceM, model.HomeStatusPending, h.ID)
	return err
}

// SetStatus moves a home through its approval lifecycle.  Used by
// admin moderation and by report resolution.
func (r *HomeRepo) SetStatus(ctx context.Context, homeID uint64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE homes SET status=? WHERE id=?`, status, homeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrHomeNotFound
	}
	return nil
}

// GetByID fetches a single home regardless of status or owner.
func (r *HomeRepo) GetByID(ctx context.Context, id uint64) (model.Home, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+homeColumns+" FROM homes WHERE id=? LIMIT 1", id)
	h, err := scanHome(row)
	if err == sql.ErrNoRows {
		return h, ErrHomeNotFound
	}
	return h, err
}

// ListByOwner returns all homes of a landlord in any status, newest
// first.
func (r *HomeRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Home, error) {
	return r.list(ctx, "SELECT "+homeColumns+" FROM homes WHERE owner_id=? ORDER BY created_at DESC", ownerID)
}

// ListByStatus returns homes in the given status, oldest first so
// that admins review submissions in arrival order.
func (r *HomeRepo) ListByStatus(ctx context.Context, status string) ([]model.Home, error) {
	return r.list(ctx, "SELECT "+homeColumns+" FROM homes WHERE status=? ORDER BY created_at ASC", status)
}

// ListApproved returns a page of APPROVED homes for public browsing
// together with the total count.
func (r *HomeRepo) ListApproved(ctx context.Context, page, pageSize int) ([]model.Home, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM homes WHERE status=?`, model.HomeStatusApproved).Scan(&total); err != nil {
		return nil, 0, err
	}
	homes, err := r.list(ctx,
		"SELECT "+homeColumns+" FROM homes WHERE status=? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		model.HomeStatusApproved, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return homes, total, nil
}

// Delete removes a home row after verifying ownership.  Homes with
// live bookings on any of their rooms return ErrConflict.  Associated
// photos, rooms and facility assignments are removed by ON DELETE
// CASCADE; files on disk are the caller's responsibility.
func (r *HomeRepo) Delete(ctx context.Context, homeID, ownerID uint64) error {
	cur, err := r.GetByID(ctx, homeID)
	if err != nil {
		return err
	}
	if cur.OwnerID != ownerID {
		return ErrForbidden
	}
	var live int64
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings b JOIN rooms rm ON rm.id = b.room_id
		 WHERE rm.home_id = ? AND b.status IN ('PENDING','CONFIRMED','PAID','RENEWED')`, homeID).Scan(&live)
	if err != nil {
		return err
	}
	if live > 0 {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM homes WHERE id=?`, homeID)
	return err
}

// ---- photos ----

// AddPhoto appends a gallery photo at the next position.
func (r *HomeRepo) AddPhoto(ctx context.Context, homeID uint64, path string) (uint64, error) {
	const q = `INSERT INTO home_photos (home_id, path, position)
	           SELECT ?, ?, COALESCE(MAX(position),0)+1 FROM home_photos WHERE home_id=?`
	res, err := r.db.ExecContext(ctx, q, homeID, path, homeID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// Photos returns the gallery photos of a home ordered by position.
func (r *HomeRepo) Photos(ctx context.Context, homeID uint64) ([]model.HomePhoto, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, home_id, path, position FROM home_photos WHERE home_id=? ORDER BY position`, homeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.HomePhoto, 0)
	for rows.Next() {
		var p model.HomePhoto
		if err := rows.Scan(&p.ID, &p.HomeID, &p.Path, &p.Position); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePhoto removes a single gallery photo row and returns its path
// so the caller can unlink the file.  ErrForbidden is returned when
// the photo's home belongs to a different owner.
func (r *HomeRepo) DeletePhoto(ctx context.Context, photoID, ownerID uint64) (string, error) {
	const q = `SELECT p.path, h.owner_id FROM home_photos p JOIN homes h ON h.id = p.home_id WHERE p.id=?`
	var path string
	var actualOwner uint64
	if err := r.db.QueryRowContext(ctx, q, photoID).Scan(&path, &actualOwner); err != nil {
		return "", err
	}
	if actualOwner != ownerID {
		return "", ErrForbidden
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM home_photos WHERE id=?`, photoID)
	return path, err
}

// ---- facilities ----

// SetFacilities replaces a home's facility assignments with the given
// id set.  Unknown facility ids violate the foreign key and surface
// as a database error.
func (r *HomeRepo) SetFacilities(ctx context.Context, homeID uint64, facilityIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM home_facilities WHERE home_id=?`, homeID); err != nil {
		return err
	}
	if len(facilityIDs) > 0 {
		query := `INSERT INTO home_facilities (home_id, facility_id) VALUES `
		args := make([]interface{}, 0, len(facilityIDs)*2)
		for i, fid := range facilityIDs {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, homeID, fid)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Facilities returns the facilities assigned to a home ordered by name.
func (r *HomeRepo) Facilities(ctx context.Context, homeID uint64) ([]model.Facility, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT f.id, f.name FROM home_facilities hf JOIN facilities f ON f.id = hf.facility_id
		 WHERE hf.home_id=? ORDER BY f.name`, homeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Facility, 0)
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AvgRating returns the average rating of a home and the number of
// votes.  A home without ratings yields (0, 0).
func (r *HomeRepo) AvgRating(ctx context.Context, homeID uint64) (float64, int64, error) {
	var avg sql.NullFloat64
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(score), COUNT(*) FROM ratings WHERE home_id=?`, homeID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, count, nil
}

// CountByStatus returns home counts keyed by status for admin stats.
func (r *HomeRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM homes GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *HomeRepo) list(ctx context.Context, q string, args ...any) ([]model.Home, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Home, 0)
	for rows.Next() {
		h, err := scanHome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanHome(s rowScanner) (model.Home, error) {
	var h model.Home
	err := s.Scan(&h.ID, &h.OwnerID, &h.Title, &h.Description, &h.City, &h.Gender,
		&h.HomeType, &h.Floor, &h.DistanceM, &h.ContractPhoto, &h.Status,
		&h.CreatedAt, &h.UpdatedAt)
	return h, err
}

// duplicateKey reports whether err looks like a MySQL 1062 unique
// constraint violation.
func duplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
