package hw

import (
	"net/http"
	"strconv"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/api/httperrors"
	"github/chapool/hw-bridge/internal/types"
	"github/chapool/hw-bridge/internal/util"
)

func DeleteSigningRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.DELETE("/signing-requests/:id", deleteSigningRequestHandler(s))
}

// deleteSigningRequestHandler cancels a still-queued signing request. Once
// the device exchange has started the request can no longer be cancelled and
// the call conflicts.
func deleteSigningRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		id, err := signingRequestID(c)
		if err != nil {
			return err
		}

		if err := s.HW.Cancel(id); err != nil {
			log.Debug().Err(err).Uint64("request_id", id).Msg("Failed to cancel signing request")
			return mapHWError(err)
		}

		request, err := s.HW.GetRequest(id)
		if err != nil {
			return mapHWError(err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, signingRequestResponse(request))
	}
}

func signingRequestID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, httperrors.NewHTTPValidationError(
			http.StatusBadRequest,
			types.PublicHTTPErrorTypeGeneric,
			"Invalid signing request ID",
			[]*types.HTTPValidationErrorDetail{
				{
					Key:   swag.String("id"),
					In:    swag.String("path"),
					Error: swag.String("must be a positive integer"),
				},
			},
		)
	}

	return id, nil
}
