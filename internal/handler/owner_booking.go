package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/queue"
	"github.com/Hassanskary/unistay/internal/repository"
	queuepub "github.com/Hassanskary/unistay/internal/service"
)

// OwnerBookingHandler serves the landlord side of the booking
// lifecycle: listing requests, confirming cash bookings and
// cancelling.  Confirmation decrements the room's bed count inside
// the same transaction that flips the status.
type OwnerBookingHandler struct {
	Bookings *repository.BookingRepo
	Rooms    *repository.RoomRepo
	Homes    *repository.HomeRepo
	Notifier *queuepub.Notifier
	Log      zerolog.Logger
}

func NewOwnerBookingHandler(b *repository.BookingRepo, r *repository.RoomRepo, h *repository.HomeRepo, n *queuepub.Notifier, log zerolog.Logger) *OwnerBookingHandler {
	if b == nil || r == nil || h == nil {
		panic("nil repository passed to NewOwnerBookingHandler")
	}
	return &OwnerBookingHandler{Bookings: b, Rooms: r, Homes: h, Notifier: n, Log: log}
}

// List handles GET /v1/owner/bookings.  Expired PENDING rows are
// swept before reading so the landlord never confirms a stale
// request.
func (h *OwnerBookingHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	if _, err := h.Bookings.SweepExpired(ctx); err != nil {
		h.Log.Warn().Err(err).Msg("booking sweep failed")
	}
	items, err := h.Bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// Confirm handles POST /v1/owner/bookings/:id/confirm.  Only PENDING
// cash bookings can be confirmed; one bed is taken from the room in
// the same transaction.
func (h *OwnerBookingHandler) Confirm(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.OwnerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	// A request older than the pending window is expired even if the
	// sweep has not touched it yet.
	if b.Status == model.BookingStatusPending && time.Since(b.CreatedAt) > repository.PendingTTL {
		_ = h.Bookings.SetStatusTx(ctx, tx, bookingID, model.BookingStatusExpired)
		if err := tx.Commit(); err == nil {
			committed = true
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking request expired"})
	}
	if b.Status != model.BookingStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
	}
	if err := h.Rooms.TakeBedTx(ctx, tx, b.RoomID); err != nil {
		if err == repository.ErrRoomFull {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no beds left in this room"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	if err := h.Bookings.SetStatusTx(ctx, tx, bookingID, model.BookingStatusConfirmed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.afterConfirm(b)
	return c.JSON(http.StatusOK, echo.Map{"id": bookingID, "status": model.BookingStatusConfirmed})
}

// afterConfirm publishes the broker event and notifies the student.
// Failures here are logged; the booking is already committed.
func (h *OwnerBookingHandler) afterConfirm(b model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rm, errRoom := h.Rooms.GetByID(ctx, b.RoomID)
	var homeTitle, roomNumber string
	var homeID uint64
	if errRoom == nil {
		roomNumber = rm.Number
		homeID = rm.HomeID
		if home, errHome := h.Homes.GetByID(ctx, rm.HomeID); errHome == nil {
			homeTitle = home.Title
		}
	}

	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		OwnerID:     b.OwnerID,
		HomeID:      homeID,
		HomeTitle:   homeTitle,
		RoomID:      b.RoomID,
		RoomNumber:  roomNumber,
		StartDate:   b.StartDate.Format("2006-01-02"),
		EndDate:     b.EndDate.Format("2006-01-02"),
		AmountCents: b.AmountCents,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queuepub.PublishBookingConfirmed(ctx, ev); err != nil {
		h.Log.Warn().Uint64("booking_id", b.ID).Err(err).Msg("publish booking.confirmed failed")
	}
	if h.Notifier != nil {
		_ = h.Notifier.Notify(ctx, b.UserID, model.NotificationBookingConfirmed,
			"Your booking for room "+roomNumber+" was confirmed by the owner.")
	}
}

// Cancel handles POST /v1/owner/bookings/:id/cancel.  Cancelling a
// confirmed or paid booking returns the bed to the room.
func (h *OwnerBookingHandler) Cancel(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	b, status, err := cancelBooking(ctx, h.Bookings, h.Rooms, bookingID, func(bk model.Booking) error {
		if bk.OwnerID != ownerID {
			return repository.ErrForbidden
		}
		return nil
	})
	if err != nil {
		switch err {
		case repository.ErrBookingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	if h.Notifier != nil {
		nctx, cancelFn := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelFn()
		_ = h.Notifier.Notify(nctx, b.UserID, model.NotificationBookingCancelled,
			"Your booking was cancelled by the owner.")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": bookingID, "status": status})
}
