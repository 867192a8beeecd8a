package hw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/types"
	"github/chapool/hw-bridge/internal/util"
)

func GetSigningRequestsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.GET("/signing-requests", getSigningRequestsHandler(s))
}

func getSigningRequestsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		requests := s.HW.ListRequests()

		items := make([]*types.SigningRequestResponse, 0, len(requests))
		for _, request := range requests {
			items = append(items, signingRequestResponse(request))
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.GetSigningRequestsResponse{SigningRequests: items})
	}
}
