package hw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func GetDevicesRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.GET("/devices", getDevicesHandler(s))
}

func getDevicesHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return util.ValidateAndReturn(c, http.StatusOK, devicesResponse(s.HW.ListDevices()))
	}
}
