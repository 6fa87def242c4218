package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/handler"
	"github.com/Hassanskary/unistay/internal/middleware"
)

// RegisterCustomer registers the student-facing authenticated
// endpoints under /v1: bookings, saved homes, feedback, chat and
// notifications.  Owners share chat and notifications, so those
// accept both roles.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, f *handler.FeedbackHandler, ch *handler.ChatHandler, n *handler.NotificationHandler, jwtSecret string) {
	// Students only: booking and feedback actions.
	user := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER"),
	)

	// ---- Bookings ----
	user.POST("/bookings", b.BookCash)
	user.POST("/bookings/stripe", b.BookStripe)
	user.POST("/bookings/checkout-session", b.CreateCheckoutSession)
	user.POST("/bookings/checkout-session/complete", b.CompleteCheckoutSession)
	user.GET("/bookings", b.List)
	user.POST("/bookings/:id/cancel", b.Cancel)

	// ---- Feedback ----
	user.POST("/homes/:id/comments", f.AddComment)
	user.PUT("/homes/:id/rating", f.RateHome)
	user.POST("/homes/:id/save", f.SaveHome)
	user.DELETE("/homes/:id/save", f.UnsaveHome)
	user.GET("/saves", f.ListSaved)
	user.POST("/homes/:id/report", f.ReportHome)

	// Any authenticated role: chat, notifications, comment removal
	// (admins can delete any comment through the same route).
	any := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "OWNER", "ADMIN"),
	)
	any.DELETE("/comments/:id", f.DeleteComment)

	// ---- Chat ----
	any.POST("/chats", ch.Send)
	any.GET("/chats", ch.Partners)
	any.GET("/chats/:id", ch.Thread)

	// ---- Notifications ----
	any.GET("/notifications", n.List)
	any.POST("/notifications/read", n.MarkAllRead)
}
