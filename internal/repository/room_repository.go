package repository

import (
	"context"
	"database/sql"

	"github.com/Hassanskary/unistay/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Bed-count mutations
// happen exclusively through the *Tx methods so that confirmation and
// cancellation flows can keep the booking row and the bed count in a
// single transaction.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = "id, home_id, number, beds, price_cents, is_completed, photo, created_at, updated_at"

// Create inserts a room after verifying that the parent home belongs
// to the owner.  ErrHomeNotFound and ErrForbidden are returned for a
// missing or foreign home respectively.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room, ownerID uint64) error {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM homes WHERE id=?`, rm.HomeID).Scan(&actualOwner)
	if err == sql.ErrNoRows {
		return ErrHomeNotFound
	}
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	const q = `INSERT INTO rooms (home_id, number, beds, price_cents, is_completed, photo) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.HomeID, rm.Number, rm.Beds, rm.PriceCents, rm.Beds == 0, rm.Photo)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	rm.IsCompleted = rm.Beds == 0
	return nil
}

// Update rewrites a room's number, bed count and price.  Setting beds
// to zero marks the room completed; raising it above zero reopens it.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room, ownerID uint64) error {
	if err := r.checkOwner(ctx, rm.ID, ownerID); err != nil {
		return err
	}
	const q = `UPDATE rooms SET number=?, beds=?, price_cents=?, is_completed=(? = 0) WHERE id=?`
	_, err := r.db.ExecContext(ctx, q, rm.Number, rm.Beds, rm.PriceCents, rm.Beds, rm.ID)
	return err
}

// SetPhoto stores the uploaded room photo path and returns the
// previous path so the caller can unlink the old file.
func (r *RoomRepo) SetPhoto(ctx context.Context, roomID, ownerID uint64, path string) (string, error) {
	if err := r.checkOwner(ctx, roomID, ownerID); err != nil {
		return "", err
	}
	var old string
	if err := r.db.QueryRowContext(ctx, `SELECT photo FROM rooms WHERE id=?`, roomID).Scan(&old); err != nil {
		return "", err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE rooms SET photo=? WHERE id=?`, path, roomID)
	return old, err
}

// Delete removes a room.  Rooms with bookings in any state other than
// CANCELLED or EXPIRED cannot be deleted and yield ErrConflict.
func (r *RoomRepo) Delete(ctx context.Context, roomID, ownerID uint64) error {
	if err := r.checkOwner(ctx, roomID, ownerID); err != nil {
		return err
	}
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE room_id=? AND status NOT IN ('CANCELLED','EXPIRED')`,
		roomID).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id=?`, roomID)
	return err
}

// GetByID fetches a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id=? LIMIT 1", id)
	rm, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return rm, ErrRoomNotFound
	}
	return rm, err
}

// GetForBookingTx loads a room together with its home's owner and
// approval status inside a transaction.  Booking handlers use it to
// validate the target before writing.
func (r *RoomRepo) GetForBookingTx(ctx context.Context, tx *sql.Tx, roomID uint64) (model.Room, uint64, string, error) {
	const q = `SELECT r.id, r.home_id, r.number, r.beds, r.price_cents, r.is_completed, r.photo, r.created_at, r.updated_at,
	                  h.owner_id, h.status
	           FROM rooms r JOIN homes h ON h.id = r.home_id
	           WHERE r.id = ? FOR UPDATE`
	var rm model.Room
	var ownerID uint64
	var homeStatus string
	err := tx.QueryRowContext(ctx, q, roomID).Scan(&rm.ID, &rm.HomeID, &rm.Number, &rm.Beds,
		&rm.PriceCents, &rm.IsCompleted, &rm.Photo, &rm.CreatedAt, &rm.UpdatedAt, &ownerID, &homeStatus)
	if err == sql.ErrNoRows {
		return rm, 0, "", ErrRoomNotFound
	}
	return rm, ownerID, homeStatus, err
}

// ListByHome returns all rooms of a home ordered by number.
func (r *RoomRepo) ListByHome(ctx context.Context, homeID uint64) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE home_id=? ORDER BY number", homeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// TakeBedTx decrements the bed count by one and flips is_completed
// when the last bed is taken.  It returns ErrRoomFull when no beds
// remain; the guard in the WHERE clause keeps the count from ever
// going negative.
func (r *RoomRepo) TakeBedTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	const q = `UPDATE rooms SET beds = beds - 1, is_completed = (beds - 1 = 0) WHERE id = ? AND beds > 0`
	res, err := tx.ExecContext(ctx, q, roomID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomFull
	}
	return nil
}

// ReturnBedTx restores one bed after a confirmed or paid booking is
// cancelled and reopens the room.
func (r *RoomRepo) ReturnBedTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	const q = `UPDATE rooms SET beds = beds + 1, is_completed = FALSE WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, roomID)
	return err
}

func (r *RoomRepo) checkOwner(ctx context.Context, roomID, ownerID uint64) error {
	const q = `SELECT h.owner_id FROM rooms r JOIN homes h ON h.id = r.home_id WHERE r.id=?`
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, q, roomID).Scan(&actualOwner)
	if err == sql.ErrNoRows {
		return ErrRoomNotFound
	}
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	return nil
}

func scanRoom(s rowScanner) (model.Room, error) {
	var rm model.Room
	err := s.Scan(&rm.ID, &rm.HomeID, &rm.Number, &rm.Beds, &rm.PriceCents,
		&rm.IsCompleted, &rm.Photo, &rm.CreatedAt, &rm.UpdatedAt)
	return rm, err
}
