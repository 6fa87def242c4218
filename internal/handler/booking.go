package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"

	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/payment"
	"github.com/Hassanskary/unistay/internal/queue"
	"github.com/Hassanskary/unistay/internal/repository"
	queuepub "github.com/Hassanskary/unistay/internal/service"
)

// BookingHandler serves the student side of the booking lifecycle.
// Cash bookings start PENDING and wait for the owner; card bookings
// are charged first and then the booking row, the payment reference
// and the bed decrement commit in a single transaction.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Rooms    *repository.RoomRepo
	Homes    *repository.HomeRepo
	Bans     *repository.BanRepo
	Notifier *queuepub.Notifier
	Charger  payment.Charger
	Log      zerolog.Logger
}

func NewBookingHandler(b *repository.BookingRepo, r *repository.RoomRepo, h *repository.HomeRepo, bans *repository.BanRepo, n *queuepub.Notifier, ch payment.Charger, log zerolog.Logger) *BookingHandler {
	if b == nil || r == nil || h == nil || bans == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: b, Rooms: r, Homes: h, Bans: bans, Notifier: n, Charger: ch, Log: log}
}

type bookingReq struct {
	RoomID    uint64 `json:"room_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

type stripeBookingReq struct {
	bookingReq
	PaymentMethodID string `json:"payment_method_id"`
}

func (req *bookingReq) dates() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// rejectBanned returns true and writes the response when the user is
// banned from interactive features.
func rejectBanned(c echo.Context, bans *repository.BanRepo, userID uint64) bool {
	banned, err := bans.IsBanned(c.Request().Context(), userID)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		return true
	}
	if banned {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "account is banned"})
		return true
	}
	return false
}

// bookingQuote is the outcome of validating a booking request against
// the room inside a transaction.
type bookingQuote struct {
	room        model.Room
	ownerID     uint64
	active      model.Booking // zero unless renew
	renew       bool
	amountCents uint32
}

// quoteTx validates the request against the locked room row and
// prices it.  A fresh booking is the prorated stay; when the user
// already holds an active booking on the room the request must
// extend it and only the added days are priced.
func (h *BookingHandler) quoteTx(ctx context.Context, tx *sql.Tx, userID, roomID uint64, start, end time.Time) (bookingQuote, error) {
	var q bookingQuote
	if err := h.Bookings.SweepExpiredRoomTx(ctx, tx, roomID); err != nil {
		return q, err
	}
	room, ownerID, homeStatus, err := h.Rooms.GetForBookingTx(ctx, tx, roomID)
	if err != nil {
		return q, err
	}
	if homeStatus != model.HomeStatusApproved {
		return q, repository.ErrHomeNotFound
	}
	if ownerID == userID {
		return q, repository.ErrForbidden
	}
	q.room = room
	q.ownerID = ownerID

	active, err := h.Bookings.FindActiveByUserAndRoomTx(ctx, tx, userID, roomID)
	switch err {
	case nil:
		if active.Status == model.BookingStatusPending {
			return q, repository.ErrConflict
		}
		// Renewal: the new end must extend the current stay.
		if !end.After(active.EndDate) {
			return q, repository.ErrInvalidDateRange
		}
		addDays := repository.StayDays(active.EndDate, end)
		q.active = active
		q.renew = true
		q.amountCents = repository.ProrationCents(room.PriceCents, addDays)
		return q, nil
	case repository.ErrBookingNotFound:
		if room.IsCompleted || room.Beds == 0 {
			return q, repository.ErrRoomFull
		}
		q.amountCents = repository.ProrationCents(room.PriceCents, repository.StayDays(start, end))
		return q, nil
	default:
		return q, err
	}
}

// bookingErrResponse maps repository sentinels to HTTP responses.
func bookingErrResponse(c echo.Context, err error) error {
	switch err {
	case repository.ErrRoomNotFound, repository.ErrHomeNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not available"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot book your own room"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a pending request for this room"})
	case repository.ErrRoomFull:
		return c.JSON(http.StatusConflict, echo.Map{"error": "no beds left in this room"})
	case repository.ErrInvalidDateRange:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "renewal must extend the current stay"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
}

// BookCash handles POST /v1/bookings.  The booking starts PENDING and
// expires after two days unless the owner confirms it.  No bed is
// taken until confirmation.
func (h *BookingHandler) BookCash(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if rejectBanned(c, h.Bans, userID) {
		return nil
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil || req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id, start_date and end_date required"})
	}
	start, end, err := req.dates()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
	}
	if err := repository.ValidateWindow(start, end, false); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
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

	quote, err := h.quoteTx(ctx, tx, userID, req.RoomID, start, end)
	if err != nil {
		return bookingErrResponse(c, err)
	}

	var b model.Booking
	if quote.renew {
		// Cash renewals keep the owner in the loop: the stay is
		// extended immediately and the added amount is collected in
		// person.
		if err := h.Bookings.ExtendTx(ctx, tx, quote.active.ID, end, quote.amountCents, nil); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "extend booking failed"})
		}
		b = quote.active
		b.EndDate = end
		b.AmountCents += quote.amountCents
		b.Status = model.BookingStatusRenewed
	} else {
		b = model.Booking{
			UserID:      userID,
			RoomID:      req.RoomID,
			OwnerID:     quote.ownerID,
			StartDate:   start,
			EndDate:     end,
			AmountCents: quote.amountCents,
			Method:      model.PaymentMethodCash,
			Status:      model.BookingStatusPending,
		}
		if err := h.Bookings.CreateTx(ctx, tx, &b); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if h.Notifier != nil {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Notifier.Notify(nctx, quote.ownerID, model.NotificationBookingCreated,
			"New booking request for room "+quote.room.Number+" ("+req.StartDate+" to "+req.EndDate+").")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":           b.ID,
		"status":       b.Status,
		"amount_cents": b.AmountCents,
	})
}

// BookStripe handles POST /v1/bookings/stripe.  The card is charged
// first; the booking row, payment reference and bed decrement then
// commit in one transaction.  A commit failure after a successful
// charge is logged with the charge id for manual reconciliation.
func (h *BookingHandler) BookStripe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if rejectBanned(c, h.Bans, userID) {
		return nil
	}
	if h.Charger == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "card payments not configured"})
	}
	var req stripeBookingReq
	if err := c.Bind(&req); err != nil || req.RoomID == 0 || req.PaymentMethodID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id, dates and payment_method_id required"})
	}
	start, end, err := req.dates()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
	}
	// Card stays must start strictly after today.
	if err := repository.ValidateWindow(start, end, true); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	// Price the request first; the validation transaction takes no
	// writes and is rolled back before the charge so row locks are
	// not held across the payment call.
	vtx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	quote, err := h.quoteTx(ctx, vtx, userID, req.RoomID, start, end)
	_ = vtx.Rollback()
	if err != nil {
		return bookingErrResponse(c, err)
	}
	if quote.amountCents < payment.MinChargeCents {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount below card minimum"})
	}

	desc := "unistay room " + quote.room.Number + " " + req.StartDate + " to " + req.EndDate
	ref, err := h.Charger.Charge(quote.amountCents, req.PaymentMethodID, desc)
	if err != nil {
		if err == payment.ErrAmountTooSmall {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount below card minimum"})
		}
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "card charge failed"})
	}

	b, err := h.settlePaid(ctx, userID, req.RoomID, start, end, ref)
	if err != nil {
		h.Log.Error().Uint64("user_id", userID).Uint64("room_id", req.RoomID).
			Str("payment_ref", ref).Err(err).
			Msg("charge succeeded but booking failed; needs reconciliation")
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment taken but booking failed; support has been notified", "payment_ref": ref})
	}

	h.afterPaid(b, quote.room, ref)
	return c.JSON(http.StatusCreated, echo.Map{
		"id":           b.ID,
		"status":       b.Status,
		"amount_cents": b.AmountCents,
		"payment_ref":  ref,
	})
}

// settlePaid re-validates under lock and writes the paid booking (or
// renewal) together with the bed decrement.
func (h *BookingHandler) settlePaid(ctx context.Context, userID, roomID uint64, start, end time.Time, ref string) (model.Booking, error) {
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	quote, err := h.quoteTx(ctx, tx, userID, roomID, start, end)
	if err != nil {
		return model.Booking{}, err
	}

	var b model.Booking
	if quote.renew {
		if err := h.Bookings.ExtendTx(ctx, tx, quote.active.ID, end, quote.amountCents, &ref); err != nil {
			return model.Booking{}, err
		}
		b = quote.active
		b.EndDate = end
		b.AmountCents += quote.amountCents
		b.Status = model.BookingStatusRenewed
		b.PaymentRef = &ref
	} else {
		if err := h.Rooms.TakeBedTx(ctx, tx, roomID); err != nil {
			return model.Booking{}, err
		}
		b = model.Booking{
			UserID:      userID,
			RoomID:      roomID,
			OwnerID:     quote.ownerID,
			StartDate:   start,
			EndDate:     end,
			AmountCents: quote.amountCents,
			Method:      model.PaymentMethodStripe,
			Status:      model.BookingStatusPaid,
			PaymentRef:  &ref,
		}
		if err := h.Bookings.CreateTx(ctx, tx, &b); err != nil {
			return model.Booking{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	committed = true
	return b, nil
}

// afterPaid publishes the broker event and notifies the owner.
func (h *BookingHandler) afterPaid(b model.Booking, room model.Room, ref string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var homeTitle string
	if home, err := h.Homes.GetByID(ctx, room.HomeID); err == nil {
		homeTitle = home.Title
	}
	ev := queue.BookingPaidEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		OwnerID:     b.OwnerID,
		HomeID:      room.HomeID,
		HomeTitle:   homeTitle,
		RoomID:      room.ID,
		AmountCents: b.AmountCents,
		PaymentRef:  ref,
		PaidAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := queuepub.PublishBookingPaid(ctx, ev); err != nil {
		h.Log.Warn().Uint64("booking_id", b.ID).Err(err).Msg("publish booking.paid failed")
	}
	if h.Notifier != nil {
		_ = h.Notifier.Notify(ctx, b.OwnerID, model.NotificationBookingConfirmed,
			"Room "+room.Number+" was booked and paid online.")
	}
}

// CreateCheckoutSession handles POST /v1/bookings/checkout-session
// and returns a hosted payment page URL.  The booking is only written
// once the session completes.
func (h *BookingHandler) CreateCheckoutSession(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if rejectBanned(c, h.Bans, userID) {
		return nil
	}
	if h.Charger == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "card payments not configured"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil || req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id, start_date and end_date required"})
	}
	start, end, err := req.dates()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
	}
	if err := repository.ValidateWindow(start, end, true); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	vtx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	quote, err := h.quoteTx(ctx, vtx, userID, req.RoomID, start, end)
	_ = vtx.Rollback()
	if err != nil {
		return bookingErrResponse(c, err)
	}
	if quote.renew {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "renew with a direct card payment"})
	}
	if quote.amountCents < payment.MinChargeCents {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount below card minimum"})
	}

	meta := map[string]string{
		"user_id":      strconv.FormatUint(userID, 10),
		"room_id":      strconv.FormatUint(req.RoomID, 10),
		"start_date":   req.StartDate,
		"end_date":     req.EndDate,
		"amount_cents": strconv.FormatUint(uint64(quote.amountCents), 10),
	}
	desc := "unistay room " + quote.room.Number + " " + req.StartDate + " to " + req.EndDate
	sessID, url, err := h.Charger.CreateCheckoutSession(quote.amountCents, desc, meta)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create checkout session failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session_id":   sessID,
		"url":          url,
		"amount_cents": quote.amountCents,
	})
}

// CompleteCheckoutSession handles POST /v1/bookings/checkout-session/complete.
// The client calls it after being redirected back; the session is
// verified with the provider before the booking is written.  Replays
// of an already settled session return the existing booking.
func (h *BookingHandler) CompleteCheckoutSession(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if h.Charger == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "card payments not configured"})
	}
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&body); err != nil || body.SessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}

	sess, err := h.Charger.CheckoutSession(body.SessionID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown session"})
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session is not paid"})
	}
	meta := sess.Metadata
	metaUser, _ := strconv.ParseUint(meta["user_id"], 10, 64)
	roomID, _ := strconv.ParseUint(meta["room_id"], 10, 64)
	if metaUser != userID || roomID == 0 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "session does not belong to you"})
	}
	start, err := time.Parse("2006-01-02", meta["start_date"])
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad session metadata"})
	}
	end, err := time.Parse("2006-01-02", meta["end_date"])
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad session metadata"})
	}
	ctx := c.Request().Context()

	// Replay: the session was already settled into a booking.
	if existing, err := h.Bookings.FindPaidByRef(ctx, body.SessionID); err == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"id":           existing.ID,
			"status":       existing.Status,
			"amount_cents": existing.AmountCents,
			"payment_ref":  body.SessionID,
		})
	}

	b, err := h.settlePaid(ctx, userID, roomID, start, end, body.SessionID)
	if err != nil {
		h.Log.Error().Uint64("user_id", userID).Uint64("room_id", roomID).
			Str("payment_ref", body.SessionID).Err(err).
			Msg("checkout session paid but booking failed; needs reconciliation")
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment taken but booking failed; support has been notified"})
	}
	room, _ := h.Rooms.GetByID(ctx, roomID)
	h.afterPaid(b, room, body.SessionID)
	return c.JSON(http.StatusCreated, echo.Map{
		"id":           b.ID,
		"status":       b.Status,
		"amount_cents": b.AmountCents,
		"payment_ref":  body.SessionID,
	})
}

// List handles GET /v1/bookings.  Expired requests are swept first so
// the student sees current statuses.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	if _, err := h.Bookings.SweepExpired(ctx); err != nil {
		h.Log.Warn().Err(err).Msg("booking sweep failed")
	}
	items, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// Cancel handles POST /v1/bookings/:id/cancel for the student.  A
// confirmed or paid stay returns its bed to the room; no automatic
// refund is issued.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	b, status, err := cancelBooking(ctx, h.Bookings, h.Rooms, bookingID, func(bk model.Booking) error {
		if bk.UserID != userID {
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
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Notifier.Notify(nctx, b.OwnerID, model.NotificationBookingCancelled,
			"A booking on your room was cancelled by the student.")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": bookingID, "status": status})
}

// cancelBooking flips a booking to CANCELLED inside a transaction,
// returning the bed when the booking had one taken.  The authorize
// callback rejects callers that are not a party to the booking.
func cancelBooking(ctx context.Context, bookings *repository.BookingRepo, rooms *repository.RoomRepo, bookingID uint64, authorize func(model.Booking) error) (model.Booking, string, error) {
	tx, err := bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return model.Booking{}, "", err
	}
	if err := authorize(b); err != nil {
		return model.Booking{}, "", err
	}
	switch b.Status {
	case model.BookingStatusPending:
		// No bed was taken yet.
	case model.BookingStatusConfirmed, model.BookingStatusPaid, model.BookingStatusRenewed:
		if err := rooms.ReturnBedTx(ctx, tx, b.RoomID); err != nil {
			return model.Booking{}, "", err
		}
	default:
		return model.Booking{}, "", repository.ErrConflict
	}
	if err := bookings.SetStatusTx(ctx, tx, bookingID, model.BookingStatusCancelled); err != nil {
		return model.Booking{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, "", err
	}
	committed = true
	return b, model.BookingStatusCancelled, nil
}
