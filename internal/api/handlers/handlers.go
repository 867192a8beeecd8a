package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/api/handlers/common"
	"github/chapool/hw-bridge/internal/api/handlers/hw"
)

// AttachAllRoutes attaches all registered routes to the server's route groups.
func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		common.GetVersionRoute(s),
		hw.DeleteDeviceRoute(s),
		hw.DeleteSigningRequestRoute(s),
		hw.GetAccountsRoute(s),
		hw.GetDeviceRoute(s),
		hw.GetDevicesRoute(s),
		hw.GetEventsRoute(s),
		hw.GetSigningRequestRoute(s),
		hw.GetSigningRequestsRoute(s),
		hw.PostConnectDeviceRoute(s),
		hw.PostDisconnectDeviceRoute(s),
		hw.PostScanRoute(s),
		hw.PostSigningRequestRoute(s),
		hw.PostTrimSigningHistoryRoute(s),
	}
}
