package hw

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/hwwallet"
	"github/chapool/hw-bridge/internal/types"
	"github/chapool/hw-bridge/internal/util"
)

func PostSigningRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.POST("/signing-requests", postSigningRequestHandler(s))
}

// postSigningRequestHandler enqueues a signing request against a ready device
// account and acknowledges it immediately. Dispatch to the device happens
// asynchronously, strictly one request at a time per device.
func postSigningRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSigningRequestPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		id, err := s.HW.Submit(ctx, swag.StringValue(body.DeviceID), swag.StringValue(body.DerivationPath), hwwallet.Payload{
			Type:    hwwallet.RequestType(swag.StringValue(body.RequestType)),
			Data:    []byte(*body.Data),
			Summary: body.Summary,
		})
		if err != nil {
			log.Debug().Err(err).Str("device_id", swag.StringValue(body.DeviceID)).Msg("Failed to submit signing request")
			return mapHWError(err)
		}

		response := &types.PostSigningRequestResponse{
			ID:     swag.Int64(int64(id)),
			Status: swag.String(string(hwwallet.StatusPending)),
		}

		return util.ValidateAndReturn(c, http.StatusAccepted, response)
	}
}
