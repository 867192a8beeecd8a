package hw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func GetDeviceRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.GET("/devices/:id", getDeviceHandler(s))
}

func getDeviceHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		device, err := s.HW.GetDevice(c.Param("id"))
		if err != nil {
			return mapHWError(err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, deviceItem(device))
	}
}
