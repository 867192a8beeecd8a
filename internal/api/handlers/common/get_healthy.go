package common

import (
	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// getHealthyHandler implements the liveness probe. Next to readiness it
// verifies that the transport layer still responds within a bounded budget by
// issuing a scan.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		if !s.Ready() {
			log.Warn().Msg("Health check failed, server is not ready")
			return c.String(521, "Not healthy.")
		}

		if _, err := s.HW.Scan(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed, transport scan errored")
			return c.String(521, "Not healthy.")
		}

		return c.String(200, "Healthy.")
	}
}
