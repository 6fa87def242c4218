package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints.  Only
// APPROVED homes are ever returned; drafts, rejected and banned
// listings stay private to their owner and the admins.
type PublicHandler struct {
	Homes      *repository.HomeRepo
	Rooms      *repository.RoomRepo
	Comments   *repository.CommentRepo
	Facilities *repository.FacilityRepo
}

func NewPublicHandler(homes *repository.HomeRepo, rooms *repository.RoomRepo, comments *repository.CommentRepo, facilities *repository.FacilityRepo) *PublicHandler {
	if homes == nil || rooms == nil || comments == nil || facilities == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Homes: homes, Rooms: rooms, Comments: comments, Facilities: facilities}
}

// ListHomes handles GET /v1/homes with ?page and ?page_size.
func (p *PublicHandler) ListHomes(c echo.Context) error {
	page, size := pageParams(c)
	homes, total, err := p.Homes.ListApproved(c.Request().Context(), page, size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"homes":     homes,
		"page":      page,
		"page_size": size,
		"total":     total,
	})
}

// GetHome handles GET /v1/homes/:id and returns the full public view
// of a listing: rooms, photos, facilities, rating summary and
// comments.
func (p *PublicHandler) GetHome(c echo.Context) error {
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	ctx := c.Request().Context()

	home, err := p.Homes.GetByID(ctx, homeID)
	if err != nil {
		if err == repository.ErrHomeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "home not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// Non-approved homes do not exist for guests.
	if home.Status != model.HomeStatusApproved {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "home not found"})
	}

	rooms, err := p.Rooms.ListByHome(ctx, homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	photos, err := p.Homes.Photos(ctx, homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	facilities, err := p.Homes.Facilities(ctx, homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	avg, count, err := p.Homes.AvgRating(ctx, homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	comments, err := p.Comments.ListByHome(ctx, homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"home":         home,
		"rooms":        rooms,
		"photos":       photos,
		"facilities":   facilities,
		"rating":       echo.Map{"average": avg, "count": count},
		"comments":     comments,
	})
}

// ListRooms handles GET /v1/homes/:id/rooms.
func (p *PublicHandler) ListRooms(c echo.Context) error {
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	ctx := c.Request().Context()

	home, err := p.Homes.GetByID(ctx, homeID)
	if err != nil || home.Status != model.HomeStatusApproved {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "home not found"})
	}
	rooms, err := p.Rooms.ListByHome(ctx, homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// ListFacilities handles GET /v1/facilities so clients can render
// filter checkboxes.
func (p *PublicHandler) ListFacilities(c echo.Context) error {
	items, err := p.Facilities.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"facilities": items})
}
