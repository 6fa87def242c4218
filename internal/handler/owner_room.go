package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/repository"
	"github.com/Hassanskary/unistay/internal/utils"
)

type roomReq struct {
	Number     string `json:"number" validate:"required,max=50"`
	Beds       uint32 `json:"beds" validate:"required,min=1,max=20"`
	PriceCents uint32 `json:"price_cents" validate:"required,min=1"`
}

// CreateRoom handles POST /v1/owner/homes/:id/rooms.
func (h *OwnerHandler) CreateRoom(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Number = strings.TrimSpace(req.Number)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number, beds (1-20) and price_cents required"})
	}

	rm := model.Room{HomeID: homeID, Number: req.Number, Beds: req.Beds, PriceCents: req.PriceCents}
	if err := h.Rooms.Create(c.Request().Context(), &rm, ownerID); err != nil {
		switch err {
		case repository.ErrHomeNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "home not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your home"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, rm)
}

// UpdateRoom handles PUT /v1/owner/rooms/:id.
func (h *OwnerHandler) UpdateRoom(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Number = strings.TrimSpace(req.Number)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number, beds (1-20) and price_cents required"})
	}

	rm := model.Room{ID: roomID, Number: req.Number, Beds: req.Beds, PriceCents: req.PriceCents}
	if err := h.Rooms.Update(c.Request().Context(), &rm, ownerID); err != nil {
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your room"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, rm)
}

// SetRoomPhoto handles PUT /v1/owner/rooms/:id/photo with a multipart
// "photo" file.  A previous photo is removed from disk.
func (h *OwnerHandler) SetRoomPhoto(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file is required"})
	}
	rel, err := utils.SaveUpload(fh, h.Cfg.UploadDir, "rooms")
	if err != nil {
		if err == utils.ErrBadUpload {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store photo failed"})
	}
	old, err := h.Rooms.SetPhoto(c.Request().Context(), roomID, ownerID, rel)
	if err != nil {
		_ = utils.RemoveUpload(h.Cfg.UploadDir, rel)
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your room"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save photo failed"})
	}
	_ = utils.RemoveUpload(h.Cfg.UploadDir, old)
	return c.JSON(http.StatusOK, echo.Map{"id": roomID, "photo": rel})
}

// DeleteRoom handles DELETE /v1/owner/rooms/:id.  Rooms with live
// bookings cannot be removed.
func (h *OwnerHandler) DeleteRoom(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), roomID, ownerID); err != nil {
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your room"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRooms handles GET /v1/owner/homes/:id/rooms.
func (h *OwnerHandler) ListRooms(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	ctx := c.Request().Context()
	home, err := h.Homes.GetByID(ctx, homeID)
	if err != nil {
		if err == repository.ErrHomeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "home not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if home.OwnerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your home"})
	}
	rooms, err := h.Rooms.ListByHome(ctx, homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"home_id": homeID, "rooms": rooms})
}
