package router

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github/chapool/hw-bridge/internal/api/httperrors"
	"github/chapool/hw-bridge/internal/types"
	"github/chapool/hw-bridge/internal/util"
)

// HTTPErrorHandler renders every error flowing out of a handler as a
// types.PublicHTTPError JSON body. Internal causes are logged, never exposed
// (unless hideInternalServerErrorDetails is disabled for local debugging).
func HTTPErrorHandler(hideInternalServerErrorDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		log := util.LogFromContext(c.Request().Context())

		var code int
		var payload any

		switch e := err.(type) {
		case *httperrors.HTTPValidationError:
			code = int(swag.Int64Value(e.Code))
			if e.Internal != nil {
				log.Error().Err(e.Internal).Msg("Internal cause behind HTTP validation error")
			}

			payload = e.PublicHTTPValidationError
		case *httperrors.HTTPError:
			code = int(swag.Int64Value(e.Code))
			if e.Internal != nil {
				log.Error().Err(e.Internal).Msg("Internal cause behind HTTP error")
			}

			payload = e.PublicHTTPError
		case *echo.HTTPError:
			code = e.Code

			title := http.StatusText(e.Code)
			if msg, ok := e.Message.(string); ok && !(hideInternalServerErrorDetails && e.Code == http.StatusInternalServerError) {
				title = msg
			}

			if e.Internal != nil {
				log.Error().Err(e.Internal).Msg("Internal cause behind HTTP error")
			}

			payload = types.PublicHTTPError{
				Code:  swag.Int64(int64(e.Code)),
				Type:  swag.String(types.PublicHTTPErrorTypeGeneric),
				Title: swag.String(title),
			}
		default:
			code = http.StatusInternalServerError

			title := http.StatusText(http.StatusInternalServerError)
			if !hideInternalServerErrorDetails {
				title = err.Error()
			}

			log.Error().Err(err).Msg("Unhandled error")

			payload = types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  swag.String(types.PublicHTTPErrorTypeGeneric),
				Title: swag.String(title),
			}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, payload)
		}

		if writeErr != nil {
			log.Error().Err(writeErr).Msg("Failed to write error response")
		}
	}
}
