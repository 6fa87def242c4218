package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Hassanskary/unistay/internal/handler"
	"github.com/Hassanskary/unistay/internal/middleware"
)

// RegisterAdmin registers moderation endpoints under /v1/admin.
// All routes require a valid JWT and ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Home approval queue ----
	g.GET("/homes", a.ListHomes)
	g.POST("/homes/:id/approve", a.ApproveHome)
	g.POST("/homes/:id/reject", a.RejectHome)
	g.POST("/homes/:id/ban", a.BanHome)

	// ---- Reports ----
	g.GET("/reports", a.ListReports)
	g.POST("/reports/:id/resolve", a.ResolveReport)
	g.POST("/reports/:id/reject", a.RejectReport)

	// ---- Users and bans ----
	g.GET("/users", a.ListUsers)
	g.POST("/users/:id/ban", a.BanUser)
	g.DELETE("/users/:id/ban", a.LiftBan)
	g.GET("/bans", a.ListBans)

	// ---- Facilities ----
	g.POST("/facilities", a.CreateFacility)
	g.DELETE("/facilities/:id", a.DeleteFacility)

	// ---- Stats ----
	g.GET("/stats", a.Stats)
}
