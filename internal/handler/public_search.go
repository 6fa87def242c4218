package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/repository"
)

// SearchHomes handles GET /v1/search/homes.  Structured filters
// narrow in SQL; free text in ?q is matched fuzzily against title and
// city so near-miss spellings still rank.
//
// Query parameters: q, city, gender, home_type, min_price, max_price
// (whole currency units), facilities (comma separated ids), page,
// page_size.
func (p *PublicHandler) SearchHomes(c echo.Context) error {
	q := repository.HomeSearchQuery{
		Text:     strings.TrimSpace(c.QueryParam("q")),
		City:     strings.TrimSpace(c.QueryParam("city")),
		Gender:   strings.TrimSpace(c.QueryParam("gender")),
		HomeType: strings.TrimSpace(c.QueryParam("home_type")),
	}
	if v := c.QueryParam("min_price"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_price must be a number"})
		}
		q.MinCents = uint32(n) * 100
	}
	if v := c.QueryParam("max_price"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_price must be a number"})
		}
		q.MaxCents = uint32(n) * 100
	}
	if q.MinCents > 0 && q.MaxCents > 0 && q.MinCents > q.MaxCents {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_price exceeds max_price"})
	}
	if v := c.QueryParam("facilities"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil || id == 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "facilities must be numeric ids"})
			}
			q.FacilityIDs = append(q.FacilityIDs, id)
		}
	}
	q.Page, q.PageSize = pageParams(c)

	rows, total, err := p.Homes.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"homes":     rows,
		"page":      q.Page,
		"page_size": q.PageSize,
		"total":     total,
	})
}
