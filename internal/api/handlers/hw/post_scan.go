package hw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func PostScanRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.POST("/scan", postScanHandler(s))
}

// postScanHandler triggers a discovery pass over all transports and returns
// the merged registry snapshot. Devices missing from the scan stay listed
// until the transport explicitly reports them gone.
func postScanHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		devices, err := s.HW.Scan(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to scan for devices")
			return mapHWError(err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, devicesResponse(devices))
	}
}
