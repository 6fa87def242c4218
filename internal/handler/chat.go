package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/repository"
	queuepub "github.com/Hassanskary/unistay/internal/service"
)

// ChatHandler serves direct messages between students and landlords.
// Sent messages are persisted and then pushed to the receiver's live
// websocket sessions.
type ChatHandler struct {
	Chats    *repository.ChatRepo
	Users    *repository.UserRepo
	Bans     *repository.BanRepo
	Notifier *queuepub.Notifier
}

func NewChatHandler(chats *repository.ChatRepo, users *repository.UserRepo, bans *repository.BanRepo, n *queuepub.Notifier) *ChatHandler {
	if chats == nil || users == nil || bans == nil {
		panic("nil repository passed to NewChatHandler")
	}
	return &ChatHandler{Chats: chats, Users: users, Bans: bans, Notifier: n}
}

type sendMessageReq struct {
	ReceiverID uint64  `json:"receiver_id"`
	HomeID     *uint64 `json:"home_id"`
	Content    string  `json:"content"`
}

// Send handles POST /v1/chats.
func (h *ChatHandler) Send(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if rejectBanned(c, h.Bans, userID) {
		return nil
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil || req.ReceiverID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "receiver_id and content required"})
	}
	if req.ReceiverID == userID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot message yourself"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" || len(req.Content) > 4000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content must be 1-4000 characters"})
	}
	ctx := c.Request().Context()

	if _, err := h.Users.GetByID(ctx, req.ReceiverID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receiver not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	msg := model.Chat{SenderID: userID, ReceiverID: req.ReceiverID, HomeID: req.HomeID, Content: req.Content}
	if err := h.Chats.Create(ctx, &msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save message failed"})
	}
	if h.Notifier != nil {
		h.Notifier.PushChat(req.ReceiverID, msg)
	}
	return c.JSON(http.StatusCreated, msg)
}

// Thread handles GET /v1/chats/:id and returns the conversation with
// the given user, oldest message first.  Opening a thread marks the
// partner's messages as read.
func (h *ChatHandler) Thread(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	partnerID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx := c.Request().Context()

	msgs, err := h.Chats.Thread(ctx, userID, partnerID, 200)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Chats.MarkRead(ctx, userID, partnerID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark read failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"partner_id": partnerID, "messages": msgs})
}

// Partners handles GET /v1/chats and lists everyone the user has a
// conversation with, including unread counts.
func (h *ChatHandler) Partners(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	partners, err := h.Chats.Partners(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"partners": partners})
}
