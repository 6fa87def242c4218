package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/repository"
	queuepub "github.com/Hassanskary/unistay/internal/service"
)

// AdminHandler serves moderation: the home approval queue, the report
// queue, user bans, facility management and platform stats.  All
// routes sit behind the ADMIN role middleware.
type AdminHandler struct {
	Homes      *repository.HomeRepo
	Reports    *repository.ReportRepo
	Bans       *repository.BanRepo
	Users      *repository.UserRepo
	Bookings   *repository.BookingRepo
	Facilities *repository.FacilityRepo
	Notifier   *queuepub.Notifier
}

func NewAdminHandler(homes *repository.HomeRepo, reports *repository.ReportRepo, bans *repository.BanRepo, users *repository.UserRepo, bookings *repository.BookingRepo, facilities *repository.FacilityRepo, n *queuepub.Notifier) *AdminHandler {
	if homes == nil || reports == nil || bans == nil || users == nil || bookings == nil || facilities == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Homes: homes, Reports: reports, Bans: bans, Users: users, Bookings: bookings, Facilities: facilities, Notifier: n}
}

func (h *AdminHandler) notify(userID uint64, kind, message string) {
	if h.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = h.Notifier.Notify(ctx, userID, kind, message)
}

// ListHomes handles GET /v1/admin/homes?status=.  Without a status
// filter the approval queue (PENDING_APPROVAL) is returned.
func (h *AdminHandler) ListHomes(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status == "" {
		status = model.HomeStatusPending
	}
	switch status {
	case model.HomeStatusPending, model.HomeStatusApproved, model.HomeStatusRejected, model.HomeStatusBanned:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	homes, err := h.Homes.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status, "homes": homes})
}

// setHomeStatus is shared by approve, reject and ban.
func (h *AdminHandler) setHomeStatus(c echo.Context, status, kind, message string) error {
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
	if err := h.Homes.SetStatus(ctx, homeID, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.notify(home.OwnerID, kind, message)
	return c.JSON(http.StatusOK, echo.Map{"id": homeID, "status": status})
}

// ApproveHome handles POST /v1/admin/homes/:id/approve.
func (h *AdminHandler) ApproveHome(c echo.Context) error {
	return h.setHomeStatus(c, model.HomeStatusApproved, model.NotificationHomeApproved,
		"Your listing was approved and is now visible to students.")
}

// RejectHome handles POST /v1/admin/homes/:id/reject.
func (h *AdminHandler) RejectHome(c echo.Context) error {
	return h.setHomeStatus(c, model.HomeStatusRejected, model.NotificationHomeRejected,
		"Your listing was rejected. Review your details and documents, then resubmit.")
}

// BanHome handles POST /v1/admin/homes/:id/ban.
func (h *AdminHandler) BanHome(c echo.Context) error {
	return h.setHomeStatus(c, model.HomeStatusBanned, model.NotificationHomeBanned,
		"Your listing was banned after moderation.")
}

// ListReports handles GET /v1/admin/reports?status= (default PENDING).
func (h *AdminHandler) ListReports(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status == "" {
		status = model.ReportStatusPending
	}
	switch status {
	case model.ReportStatusPending, model.ReportStatusResolved, model.ReportStatusRejected:
	case "ALL":
		status = ""
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	reports, err := h.Reports.List(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reports": reports})
}

// ResolveReport handles POST /v1/admin/reports/:id/resolve.  A
// resolved report bans the reported home.
func (h *AdminHandler) ResolveReport(c echo.Context) error {
	reportID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	ctx := c.Request().Context()
	rep, err := h.Reports.GetByID(ctx, reportID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	}
	if err := h.Reports.SetStatus(ctx, reportID, model.ReportStatusResolved); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "report already handled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	home, errHome := h.Homes.GetByID(ctx, rep.HomeID)
	if errHome == nil {
		if err := h.Homes.SetStatus(ctx, rep.HomeID, model.HomeStatusBanned); err == nil {
			h.notify(home.OwnerID, model.NotificationHomeBanned,
				"Your listing was banned after a report was upheld.")
		}
	}
	h.notify(rep.ReporterID, model.NotificationReportResolved,
		"Your report was reviewed and the listing was taken down.")
	return c.JSON(http.StatusOK, echo.Map{"id": reportID, "status": model.ReportStatusResolved})
}

// RejectReport handles POST /v1/admin/reports/:id/reject.  The home
// is left untouched.
func (h *AdminHandler) RejectReport(c echo.Context) error {
	reportID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	ctx := c.Request().Context()
	rep, err := h.Reports.GetByID(ctx, reportID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	}
	if err := h.Reports.SetStatus(ctx, reportID, model.ReportStatusRejected); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "report already handled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.notify(rep.ReporterID, model.NotificationReportRejected,
		"Your report was reviewed and no action was taken.")
	return c.JSON(http.StatusOK, echo.Map{"id": reportID, "status": model.ReportStatusRejected})
}

// BanUser handles POST /v1/admin/users/:id/ban.
func (h *AdminHandler) BanUser(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body)
	body.Reason = strings.TrimSpace(body.Reason)
	if body.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}
	if err := h.Bans.Ban(c.Request().Context(), userID, adminID, body.Reason); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user is already banned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ban failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user_id": userID, "banned": true})
}

// LiftBan handles DELETE /v1/admin/users/:id/ban.
func (h *AdminHandler) LiftBan(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if err := h.Bans.Lift(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lift ban failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBans handles GET /v1/admin/bans.
func (h *AdminHandler) ListBans(c echo.Context) error {
	bans, err := h.Bans.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bans": bans})
}

// ListUsers handles GET /v1/admin/users?role=.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	role := strings.ToUpper(strings.TrimSpace(c.QueryParam("role")))
	switch role {
	case model.RoleUser, model.RoleOwner, model.RoleAdmin:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be USER, OWNER or ADMIN"})
	}
	users, err := h.Users.ListByRole(c.Request().Context(), role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// CreateFacility handles POST /v1/admin/facilities.
func (h *AdminHandler) CreateFacility(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || len(body.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be 1-100 characters"})
	}
	f := model.Facility{Name: body.Name}
	if err := h.Facilities.Create(c.Request().Context(), &f); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "facility already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create facility failed"})
	}
	return c.JSON(http.StatusCreated, f)
}

// DeleteFacility handles DELETE /v1/admin/facilities/:id.  Facilities
// still attached to homes cannot be removed.
func (h *AdminHandler) DeleteFacility(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	if err := h.Facilities.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "facility is in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete facility failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /v1/admin/stats with platform-wide counters.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.Users.CountAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	homes, err := h.Homes.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	bookings, err := h.Bookings.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":    users,
		"homes":    homes,
		"bookings": bookings,
	})
}
