package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/config"
	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/repository"
	"github.com/Hassanskary/unistay/internal/utils"
)

// OwnerHandler groups repositories used by landlord endpoints.  All
// methods assume JWT authentication and the OWNER role have been
// enforced by middleware.
type OwnerHandler struct {
	Cfg        config.Config
	Homes      *repository.HomeRepo
	Rooms      *repository.RoomRepo
	Facilities *repository.FacilityRepo
}

func NewOwnerHandler(cfg config.Config, homes *repository.HomeRepo, rooms *repository.RoomRepo, facilities *repository.FacilityRepo) *OwnerHandler {
	if homes == nil || rooms == nil || facilities == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{Cfg: cfg, Homes: homes, Rooms: rooms, Facilities: facilities}
}

var validGenders = map[string]bool{
	model.GenderMale:   true,
	model.GenderFemale: true,
	model.GenderMixed:  true,
}

var validHomeTypes = map[string]bool{
	model.HomeTypeApartment: true,
	model.HomeTypeVilla:     true,
	model.HomeTypeShared:    true,
}

// homeFromForm reads the multipart fields shared by create and update.
func homeFromForm(c echo.Context) (model.Home, error) {
	var h model.Home
	h.Title = strings.TrimSpace(c.FormValue("title"))
	h.Description = strings.TrimSpace(c.FormValue("description"))
	h.City = strings.TrimSpace(c.FormValue("city"))
	h.Gender = strings.ToUpper(strings.TrimSpace(c.FormValue("gender")))
	h.HomeType = strings.ToUpper(strings.TrimSpace(c.FormValue("home_type")))
	h.Floor, _ = strconv.Atoi(c.FormValue("floor"))
	h.DistanceM, _ = strconv.Atoi(c.FormValue("distance_m"))
	if h.Title == "" || h.City == "" {
		return h, echo.NewHTTPError(http.StatusBadRequest, "title and city are required")
	}
	if !validGenders[h.Gender] {
		return h, echo.NewHTTPError(http.StatusBadRequest, "gender must be MALE, FEMALE or MIXED")
	}
	if !validHomeTypes[h.HomeType] {
		return h, echo.NewHTTPError(http.StatusBadRequest, "home_type must be APARTMENT, VILLA or SHARED")
	}
	if h.DistanceM < 0 {
		return h, echo.NewHTTPError(http.StatusBadRequest, "distance_m must not be negative")
	}
	return h, nil
}

// CreateHome handles POST /v1/owner/homes.  The request is a multipart
// form carrying the listing fields plus a "contract" file proving
// ownership.  The new home starts as PENDING_APPROVAL.
func (h *OwnerHandler) CreateHome(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	home, err := homeFromForm(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return c.JSON(he.Code, echo.Map{"error": he.Message})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}
	fh, err := c.FormFile("contract")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contract file is required"})
	}
	rel, err := utils.SaveUpload(fh, h.Cfg.UploadDir, "contracts")
	if err != nil {
		if err == utils.ErrBadUpload {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store contract failed"})
	}
	home.OwnerID = ownerID
	home.ContractPhoto = rel

	if err := h.Homes.Create(c.Request().Context(), &home); err != nil {
		_ = utils.RemoveUpload(h.Cfg.UploadDir, rel)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create home failed"})
	}
	return c.JSON(http.StatusCreated, home)
}

// UpdateHome handles PUT /v1/owner/homes/:id.  Any change puts the
// home back into PENDING_APPROVAL for re-review.
func (h *OwnerHandler) UpdateHome(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	home, err := homeFromForm(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return c.JSON(he.Code, echo.Map{"error": he.Message})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}
	home.ID = homeID
	ctx := c.Request().Context()

	// Replace the contract scan only when a new file is sent.  The
	// old scan is unlinked once the row update sticks.
	var oldContract string
	if fh, errFile := c.FormFile("contract"); errFile == nil {
		if prev, errGet := h.Homes.GetByID(ctx, homeID); errGet == nil {
			oldContract = prev.ContractPhoto
		}
		rel, errSave := utils.SaveUpload(fh, h.Cfg.UploadDir, "contracts")
		if errSave != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type"})
		}
		home.ContractPhoto = rel
	}

	if err := h.Homes.Update(ctx, &home, ownerID); err != nil {
		_ = utils.RemoveUpload(h.Cfg.UploadDir, home.ContractPhoto)
		switch err {
		case repository.ErrHomeNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "home not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your home"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update home failed"})
	}
	if oldContract != "" && oldContract != home.ContractPhoto {
		_ = utils.RemoveUpload(h.Cfg.UploadDir, oldContract)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": homeID, "status": model.HomeStatusPending})
}

// DeleteHome handles DELETE /v1/owner/homes/:id.
func (h *OwnerHandler) DeleteHome(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	ctx := c.Request().Context()

	// Collect every file path before the rows go away: the contract
	// scan, room photos and the gallery.
	var files []string
	if home, errGet := h.Homes.GetByID(ctx, homeID); errGet == nil {
		files = append(files, home.ContractPhoto)
	}
	if rooms, errRooms := h.Rooms.ListByHome(ctx, homeID); errRooms == nil {
		for _, rm := range rooms {
			files = append(files, rm.Photo)
		}
	}
	photos, _ := h.Homes.Photos(ctx, homeID)
	for _, p := range photos {
		files = append(files, p.Path)
	}

	if err := h.Homes.Delete(ctx, homeID, ownerID); err != nil {
		switch err {
		case repository.ErrHomeNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "home not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your home"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "home has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete home failed"})
	}
	for _, rel := range files {
		_ = utils.RemoveUpload(h.Cfg.UploadDir, rel)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyHomes handles GET /v1/owner/homes and returns every home of
// the landlord regardless of approval status.
func (h *OwnerHandler) ListMyHomes(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homes, err := h.Homes.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"homes": homes})
}

// AddHomePhoto handles POST /v1/owner/homes/:id/photos.
func (h *OwnerHandler) AddHomePhoto(c echo.Context) error {
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
	fh, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file is required"})
	}
	rel, err := utils.SaveUpload(fh, h.Cfg.UploadDir, "homes")
	if err != nil {
		if err == utils.ErrBadUpload {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store photo failed"})
	}
	id, err := h.Homes.AddPhoto(ctx, homeID, rel)
	if err != nil {
		_ = utils.RemoveUpload(h.Cfg.UploadDir, rel)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save photo failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "path": rel})
}

// DeleteHomePhoto handles DELETE /v1/owner/homes/photos/:photoID.
func (h *OwnerHandler) DeleteHomePhoto(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	photoID, err := pathID(c, "photoID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid photo id"})
	}
	rel, err := h.Homes.DeletePhoto(c.Request().Context(), photoID, ownerID)
	if err != nil {
		switch err {
		case repository.ErrHomeNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your home"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete photo failed"})
	}
	_ = utils.RemoveUpload(h.Cfg.UploadDir, rel)
	return c.NoContent(http.StatusNoContent)
}

// SetHomeFacilities handles PUT /v1/owner/homes/:id/facilities.  The
// body carries the complete facility id list; previous assignments
// are replaced.
func (h *OwnerHandler) SetHomeFacilities(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	var body struct {
		FacilityIDs []uint64 `json:"facility_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
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
	if err := h.Homes.SetFacilities(ctx, homeID, body.FacilityIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save facilities failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"home_id": homeID, "facility_ids": body.FacilityIDs})
}
