package hw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
)

func DeleteDeviceRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.DELETE("/devices/:id", deleteDeviceHandler(s))
}

// deleteDeviceHandler processes an explicit vanish signal: the device is torn
// down as on disconnect and removed from the registry entirely. Unknown IDs
// are a no-op, matching transports that report the same removal twice.
func deleteDeviceHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.HW.HandleVanished(c.Request().Context(), c.Param("id"))

		return c.NoContent(http.StatusNoContent)
	}
}
