package server

import (
	"github.com/confmine/confmine/internal/server/middleware"
	"github.com/confmine/confmine/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Conference routes
	apiRoutes.GET("/conferences", routes.GetConferencesHandler)
	apiRoutes.GET("/conferences/:id", routes.GetConferenceHandler)
	apiRoutes.POST("/conferences", routes.CreateConferenceHandler, middleware.RequireAdmin)
	apiRoutes.PATCH("/conferences/accessibility", routes.MarkAccessibilityHandler, middleware.RequireAdmin)

	// Page snapshot routes
	apiRoutes.POST("/conferences/:id/pages", routes.UploadPageHandler, middleware.RequireAdmin)

	// Extraction routes
	apiRoutes.POST("/conferences/:id/extract", routes.TriggerExtractionHandler, middleware.RequireAdmin)
	apiRoutes.GET("/conferences/:id/persons", routes.GetConferencePersonsHandler)

	// Disambiguation routes
	apiRoutes.GET("/disambiguate", routes.DisambiguateHandler)
}
