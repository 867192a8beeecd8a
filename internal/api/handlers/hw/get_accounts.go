package hw

import (
	"net/http"
	"strconv"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/api/httperrors"
	"github/chapool/hw-bridge/internal/hwwallet"
	"github/chapool/hw-bridge/internal/types"
	"github/chapool/hw-bridge/internal/util"
)

const defaultAccountPageSize = 10

func GetAccountsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.GET("/devices/:id/accounts", getAccountsHandler(s))
}

// getAccountsHandler derives a bounded page of accounts from a ready device.
// Repeated loads within the same session are served from the session cache.
func getAccountsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)
		deviceID := c.Param("id")

		start, err := queryInt(c, "start", 0)
		if err != nil {
			return err
		}

		count, err := queryInt(c, "count", defaultAccountPageSize)
		if err != nil {
			return err
		}

		accounts, err := s.HW.LoadAccounts(ctx, deviceID, hwwallet.PathRange{Start: start, Count: count})
		if err != nil {
			if errors.Is(err, hwwallet.ErrInvalidRange) {
				return invalidRangeError(err)
			}

			log.Debug().Err(err).Str("device_id", deviceID).Msg("Failed to load accounts")
			return mapHWError(err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, accountsResponse(accounts))
	}
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, httperrors.NewHTTPValidationError(
			http.StatusBadRequest,
			types.PublicHTTPErrorTypeGeneric,
			"Invalid query parameter",
			[]*types.HTTPValidationErrorDetail{
				{
					Key:   swag.String(name),
					In:    swag.String("query"),
					Error: swag.String("must be an integer"),
				},
			},
		)
	}

	return value, nil
}

func invalidRangeError(err error) error {
	return httperrors.NewHTTPValidationError(
		http.StatusBadRequest,
		types.PublicHTTPErrorTypeGeneric,
		"Invalid derivation range",
		[]*types.HTTPValidationErrorDetail{
			{
				Key:   swag.String("start, count"),
				In:    swag.String("query"),
				Error: swag.String(err.Error()),
			},
		},
	)
}
