package hw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func PostDisconnectDeviceRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.POST("/devices/:id/disconnect", postDisconnectDeviceHandler(s))
}

// postDisconnectDeviceHandler tears down the device connection. Queued
// signing requests for the device cancel and an in-flight one errors.
// Disconnecting an already disconnected device is a no-op.
func postDisconnectDeviceHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)
		deviceID := c.Param("id")

		if err := s.HW.Disconnect(ctx, deviceID); err != nil {
			log.Debug().Err(err).Str("device_id", deviceID).Msg("Failed to disconnect device")
			return mapHWError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}
