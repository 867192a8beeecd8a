package hw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func PostConnectDeviceRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.POST("/devices/:id/connect", postConnectDeviceHandler(s))
}

// postConnectDeviceHandler opens the device connection and starts a fresh
// session. Connecting an already connected device returns the current
// snapshot without touching the session.
func postConnectDeviceHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)
		deviceID := c.Param("id")

		device, err := s.HW.Connect(ctx, deviceID)
		if err != nil {
			log.Debug().Err(err).Str("device_id", deviceID).Msg("Failed to connect device")
			return mapHWError(err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, deviceItem(device))
	}
}
