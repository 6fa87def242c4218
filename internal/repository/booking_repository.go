package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Hassanskary/unistay/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  Multi-step
// flows (create + bed decrement, renewal + charge, cancel + bed
// return) run through the *Tx methods inside a caller-owned
// transaction so that a booking row can never disagree with its
// room's bed count.  All timestamps are UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// PendingTTL is how long a PENDING booking may sit before the sweep
// reports it as EXPIRED.
const PendingTTL = 48 * time.Hour

// ProrationCents computes the daily-prorated charge for a stay:
// days * monthly price / 30, truncated to whole cents.
func ProrationCents(priceCents uint32, days int) uint32 {
	if days <= 0 {
		return 0
	}
	return uint32(uint64(days) * uint64(priceCents) / 30)
}

// StayDays returns the length of the booking window in whole days.
func StayDays(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// ValidateWindow enforces the booking date rules: the end must fall
// after the start, the stay must span 1 to 30 days, and when
// afterToday is set the start must be strictly later than today.
// It returns ErrInvalidDateRange on any violation.
func ValidateWindow(start, end time.Time, afterToday bool) error {
	if !end.After(start) {
		return ErrInvalidDateRange
	}
	days := StayDays(start, end)
	if days < 1 || days > 30 {
		return ErrInvalidDateRange
	}
	if afterToday {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if !start.After(today) {
			return ErrInvalidDateRange
		}
	}
	return nil
}

// SweepExpired flips every PENDING booking older than PendingTTL to
// EXPIRED and returns the number of rows touched.  It runs at the top
// of every booking read so that expiry never needs a background job.
func (r *BookingRepo) SweepExpired(ctx context.Context) (int64, error) {
	const q = `UPDATE bookings SET status = 'EXPIRED'
	           WHERE status = 'PENDING' AND created_at <= (UTC_TIMESTAMP() - INTERVAL 2 DAY)`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SweepExpiredRoomTx is the transactional variant scoped to one room,
// used before looking up an active booking inside a booking flow.
func (r *BookingRepo) SweepExpiredRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	const q = `UPDATE bookings SET status = 'EXPIRED'
	           WHERE room_id = ? AND status = 'PENDING' AND created_at <= (UTC_TIMESTAMP() - INTERVAL 2 DAY)`
	_, err := tx.ExecContext(ctx, q, roomID)
	return err
}

const bookingColumns = "id, user_id, room_id, owner_id, start_date, end_date, amount_cents, method, status, payment_ref, created_at, updated_at"

// FindActiveByUserAndRoomTx returns the user's live booking on a room
// (PENDING, CONFIRMED, PAID or RENEWED), locked for update, or
// ErrBookingNotFound when none exists.  Renewal flows branch on it.
func (r *BookingRepo) FindActiveByUserAndRoomTx(ctx context.Context, tx *sql.Tx, userID, roomID uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE user_id = ? AND room_id = ? AND status IN ('PENDING','CONFIRMED','PAID','RENEWED')
	           ORDER BY id DESC LIMIT 1 FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, userID, roomID))
	if err == sql.ErrNoRows {
		return b, ErrBookingNotFound
	}
	return b, err
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID on the record.  Status
// must be a valid enumeration value.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, room_id, owner_id, start_date, end_date, amount_cents, method, status, payment_ref)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.RoomID, b.OwnerID,
		b.StartDate.UTC().Format("2006-01-02"), b.EndDate.UTC().Format("2006-01-02"),
		b.AmountCents, b.Method, b.Status, b.PaymentRef)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ExtendTx implements a renewal: the end date moves forward, the
// incremental charge is added to the accumulated amount, the status
// becomes RENEWED and the payment reference is replaced when the
// renewal was paid by card.
func (r *BookingRepo) ExtendTx(ctx context.Context, tx *sql.Tx, bookingID uint64, newEnd time.Time, addCents uint32, paymentRef *string) error {
	const q = `UPDATE bookings SET end_date = ?, amount_cents = amount_cents + ?, status = 'RENEWED',
	           payment_ref = COALESCE(?, payment_ref) WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, newEnd.UTC().Format("2006-01-02"), addCents, paymentRef, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// SetStatusTx updates a booking's status inside a transaction.
func (r *BookingRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status string) error {
	res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// GetByIDTx loads a booking by id, locked for update.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? FOR UPDATE", id))
	if err == sql.ErrNoRows {
		return b, ErrBookingNotFound
	}
	return b, err
}

// FindPaidByRef looks up a booking by payment reference.  Used to
// make checkout completion idempotent across client replays.
func (r *BookingRepo) FindPaidByRef(ctx context.Context, ref string) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE payment_ref=? LIMIT 1", ref))
	if err == sql.ErrNoRows {
		return b, ErrBookingNotFound
	}
	return b, err
}

// BookingDetail is a booking joined with its room and home for list
// views.
type BookingDetail struct {
	ID          uint64  `json:"id"`
	RoomID      uint64  `json:"room_id"`
	RoomNumber  string  `json:"room_number"`
	HomeID      uint64  `json:"home_id"`
	HomeTitle   string  `json:"home_title"`
	City        string  `json:"city"`
	UserID      uint64  `json:"user_id,omitempty"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	AmountCents uint32  `json:"amount_cents"`
	Method      string  `json:"method"`
	Status      string  `json:"status"`
	PaymentRef  *string `json:"payment_ref,omitempty"`
}

const detailQuery = `SELECT b.id, b.room_id, r.number, h.id, h.title, h.city, b.user_id,
	       DATE_FORMAT(b.start_date, '%Y-%m-%d'), DATE_FORMAT(b.end_date, '%Y-%m-%d'),
	       b.amount_cents, b.method, b.status, b.payment_ref
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	JOIN homes h ON h.id = r.home_id `

// ListByUser returns a student's bookings, newest first.  Callers are
// expected to run SweepExpired first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	return r.listDetails(ctx, detailQuery+`WHERE b.user_id = ? ORDER BY b.created_at DESC`, userID)
}

// ListByOwner returns all bookings on a landlord's rooms, newest
// first.  Callers are expected to run SweepExpired first.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]BookingDetail, error) {
	return r.listDetails(ctx, detailQuery+`WHERE b.owner_id = ? ORDER BY b.created_at DESC`, ownerID)
}

// CountByStatus returns booking counts keyed by status for admin stats.
func (r *BookingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
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

func (r *BookingRepo) listDetails(ctx context.Context, q string, args ...any) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var payRef sql.NullString
		if err := rows.Scan(&d.ID, &d.RoomID, &d.RoomNumber, &d.HomeID, &d.HomeTitle, &d.City,
			&d.UserID, &d.StartDate, &d.EndDate, &d.AmountCents, &d.Method, &d.Status, &payRef); err != nil {
			return nil, err
		}
		if payRef.Valid {
			ref := payRef.String
			d.PaymentRef = &ref
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var b model.Booking
	var payRef sql.NullString
	err := s.Scan(&b.ID, &b.UserID, &b.RoomID, &b.OwnerID, &b.StartDate, &b.EndDate,
		&b.AmountCents, &b.Method, &b.Status, &payRef, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if payRef.Valid {
		ref := payRef.String
		b.PaymentRef = &ref
	}
	return b, nil
}
