package repository

import (
	"context"
	"database/sql"

	"github.com/Hassanskary/unistay/internal/model"
)

// FacilityRepo provides access to the facilities catalog.
type FacilityRepo struct{ db *sql.DB }

func NewFacilityRepo(db *sql.DB) *FacilityRepo { return &FacilityRepo{db: db} }

// Create adds a facility to the catalog.  Duplicate names yield
// ErrConflict.
func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO facilities (name) VALUES (?)`, f.Name)
	if err != nil {
		if duplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// List returns the whole catalog ordered by name.
func (r *FacilityRepo) List(ctx context.Context) ([]model.Facility, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM facilities ORDER BY name`)
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

// Delete removes a facility.  Facilities still assigned to homes
// cannot be removed and yield ErrConflict.
func (r *FacilityRepo) Delete(ctx context.Context, id uint64) error {
	var n int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM home_facilities WHERE facility_id=?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM facilities WHERE id=?`, id)
	return err
}
