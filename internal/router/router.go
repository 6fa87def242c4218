package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/Hassanskary/unistay/internal/handler"    // import the handlers that implement business logic
	"github.com/Hassanskary/unistay/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check, the websocket endpoint and the
// static uploads directory.
func RegisterRoutes(e *echo.Echo, ws *handler.WSHandler, uploadDir string) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
	// Live notification and chat push.  Auth happens inside the handler
	// because browsers cannot set headers on websocket dials.
	e.GET("/v1/ws", ws.Serve)
	// Uploaded photos and contract scans are served as static files.
	e.Static("/uploads", uploadDir)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/google", a.Google)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh_token body or a bearer token and
	// does not require the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)

	// Alias kept for clients that call logout on the versioned root.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse and search endpoints.
// These return only APPROVED listings and are intended for guests.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/v1/homes", p.ListHomes)
	e.GET("/v1/homes/:id", p.GetHome)
	e.GET("/v1/homes/:id/rooms", p.ListRooms)
	e.GET("/v1/facilities", p.ListFacilities)
	e.GET("/v1/search/homes", p.SearchHomes)
}
