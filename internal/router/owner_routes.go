package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/handler"    // owner handlers
	"github.com/Hassanskary/unistay/internal/middleware" // JWT + role middlewares
)

// RegisterOwner registers OWNER-scoped endpoints under /v1/owner.
// All routes require a valid JWT and OWNER role.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, b *handler.OwnerBookingHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Homes ----
	g.POST("/homes", o.CreateHome)
	g.GET("/homes", o.ListMyHomes)
	g.PUT("/homes/:id", o.UpdateHome)
	g.PATCH("/homes/:id", o.UpdateHome) // allow partial/semantic updates via PATCH as well
	g.DELETE("/homes/:id", o.DeleteHome)
	g.POST("/homes/:id/photos", o.AddHomePhoto)
	g.DELETE("/homes/photos/:photoID", o.DeleteHomePhoto)
	g.PUT("/homes/:id/facilities", o.SetHomeFacilities)

	// ---- Rooms ----
	g.POST("/homes/:id/rooms", o.CreateRoom)
	g.GET("/homes/:id/rooms", o.ListRooms)
	g.PUT("/rooms/:id", o.UpdateRoom)
	g.PATCH("/rooms/:id", o.UpdateRoom)
	g.PUT("/rooms/:id/photo", o.SetRoomPhoto)
	g.DELETE("/rooms/:id", o.DeleteRoom)

	// ---- Bookings ----
	g.GET("/bookings", b.List)
	g.POST("/bookings/:id/confirm", b.Confirm)
	g.POST("/bookings/:id/cancel", b.Cancel)
}
