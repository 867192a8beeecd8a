package common

import (
	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// getReadyHandler implements the readiness probe. It only reports positively
// once all server components were initialized.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromContext(c.Request().Context())

		if !s.Ready() {
			log.Warn().Msg("Readiness check failed, server is not ready")
			return c.String(521, "Not ready.")
		}

		return c.String(200, "Ready.")
	}
}
