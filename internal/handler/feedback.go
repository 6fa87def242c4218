package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/repository"
	queuepub "github.com/Hassanskary/unistay/internal/service"
)

// FeedbackHandler serves comments, ratings, saved listings and
// reports.  All endpoints require a logged-in user; banned users are
// rejected on every write.
type FeedbackHandler struct {
	Comments *repository.CommentRepo
	Ratings  *repository.RatingRepo
	Saves    *repository.SaveRepo
	Reports  *repository.ReportRepo
	Homes    *repository.HomeRepo
	Bans     *repository.BanRepo
	Notifier *queuepub.Notifier
}

func NewFeedbackHandler(comments *repository.CommentRepo, ratings *repository.RatingRepo, saves *repository.SaveRepo, reports *repository.ReportRepo, homes *repository.HomeRepo, bans *repository.BanRepo, n *queuepub.Notifier) *FeedbackHandler {
	if comments == nil || ratings == nil || saves == nil || reports == nil || homes == nil || bans == nil {
		panic("nil repository passed to NewFeedbackHandler")
	}
	return &FeedbackHandler{Comments: comments, Ratings: ratings, Saves: saves, Reports: reports, Homes: homes, Bans: bans, Notifier: n}
}

// approvedHome loads a home and hides anything not APPROVED.
func (h *FeedbackHandler) approvedHome(c echo.Context, homeID uint64) (model.Home, bool) {
	home, err := h.Homes.GetByID(c.Request().Context(), homeID)
	if err != nil || home.Status != model.HomeStatusApproved {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "home not found"})
		return model.Home{}, false
	}
	return home, true
}

// AddComment handles POST /v1/homes/:id/comments.
func (h *FeedbackHandler) AddComment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if rejectBanned(c, h.Bans, userID) {
		return nil
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	if _, ok := h.approvedHome(c, homeID); !ok {
		return nil
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Content = strings.TrimSpace(body.Content)
	if body.Content == "" || len(body.Content) > 2000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content must be 1-2000 characters"})
	}
	cm := model.Comment{UserID: userID, HomeID: homeID, Content: body.Content}
	if err := h.Comments.Create(c.Request().Context(), &cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save comment failed"})
	}
	return c.JSON(http.StatusCreated, cm)
}

// DeleteComment handles DELETE /v1/comments/:id.  Users remove their
// own comments; admins can remove any.
func (h *FeedbackHandler) DeleteComment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	commentID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
	}
	isAdmin := getRole(c) == model.RoleAdmin
	if err := h.Comments.Delete(c.Request().Context(), commentID, userID, isAdmin); err != nil {
		switch err {
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your comment"})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete comment failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RateHome handles PUT /v1/homes/:id/rating.  A repeated rating by
// the same user overwrites the previous score.
func (h *FeedbackHandler) RateHome(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if rejectBanned(c, h.Bans, userID) {
		return nil
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	if _, ok := h.approvedHome(c, homeID); !ok {
		return nil
	}
	var body struct {
		Score uint8 `json:"score"`
	}
	if err := c.Bind(&body); err != nil || body.Score < 1 || body.Score > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "score must be 1-5"})
	}
	if err := h.Ratings.Upsert(c.Request().Context(), userID, homeID, body.Score); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save rating failed"})
	}
	avg, count, err := h.Homes.AvgRating(c.Request().Context(), homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"home_id": homeID, "score": body.Score, "average": avg, "count": count})
}

// SaveHome handles POST /v1/homes/:id/save.  Saving twice is a no-op.
func (h *FeedbackHandler) SaveHome(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	if _, ok := h.approvedHome(c, homeID); !ok {
		return nil
	}
	if err := h.Saves.Add(c.Request().Context(), userID, homeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"home_id": homeID, "saved": true})
}

// UnsaveHome handles DELETE /v1/homes/:id/save.
func (h *FeedbackHandler) UnsaveHome(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	if err := h.Saves.Remove(c.Request().Context(), userID, homeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unsave failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSaved handles GET /v1/saves and returns the user's saved homes
// that are still approved.
func (h *FeedbackHandler) ListSaved(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	homes, err := h.Saves.ListHomes(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"homes": homes})
}

// ReportHome handles POST /v1/homes/:id/report.  The complaint joins
// the admin review queue as PENDING.
func (h *FeedbackHandler) ReportHome(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if rejectBanned(c, h.Bans, userID) {
		return nil
	}
	homeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid home id"})
	}
	if _, ok := h.approvedHome(c, homeID); !ok {
		return nil
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Reason = strings.TrimSpace(body.Reason)
	if body.Reason == "" || len(body.Reason) > 2000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason must be 1-2000 characters"})
	}
	rep := model.Report{ReporterID: userID, HomeID: homeID, Reason: body.Reason}
	if err := h.Reports.Create(c.Request().Context(), &rep); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save report failed"})
	}
	if h.Notifier != nil {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Notifier.Notify(nctx, userID, model.NotificationReportFiled,
			"Your report was filed and will be reviewed by a moderator.")
	}
	return c.JSON(http.StatusCreated, rep)
}
