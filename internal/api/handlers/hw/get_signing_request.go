package hw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func GetSigningRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.GET("/signing-requests/:id", getSigningRequestHandler(s))
}

// getSigningRequestHandler returns the current state of one signing request.
// Polling is idempotent; once terminal, the reported result never changes.
func getSigningRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := signingRequestID(c)
		if err != nil {
			return err
		}

		request, err := s.HW.GetRequest(id)
		if err != nil {
			return mapHWError(err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, signingRequestResponse(request))
	}
}
