package common

import (
	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/config"
)

func GetVersionRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/version", getVersionHandler(s))
}

func getVersionHandler(_ *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(200, config.GetFormattedBuildArgs())
	}
}
