package router

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/api/handlers"
	"github/chapool/hw-bridge/internal/api/middleware"
)

// Init sets up the echo instance, the middleware chain and all routes on the
// given server. Called after wire has initialized the components.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = false
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.HTTPErrorHandler = HTTPErrorHandler(s.Config.Echo.HideInternalServerErrorDetails)

	// ---
	// General middleware
	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(echoMiddleware.Recover())
	}

	s.Echo.Use(echoMiddleware.RequestID())

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.Logger())
	}

	if s.Config.Echo.EnableMetricsMiddleware {
		s.Echo.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "hwbridge_http",
			Registerer: s.Metrics.Registry(),
		}))
	}

	// ---
	// Route groups
	s.Router = &api.Router{
		Root:       s.Echo.Group(""),
		Management: s.Echo.Group("/-"),
		APIV1HW:    s.Echo.Group("/api/v1/hw"),
	}

	handlers.AttachAllRoutes(s)
}
