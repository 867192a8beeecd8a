package util

import (
	"net/http"

	openapierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github/chapool/hw-bridge/internal/api/httperrors"
	"github/chapool/hw-bridge/internal/types"
)

// BindAndValidateBody binds the request body to the payload and runs its
// swagger validation, returning an HTTPValidationError on failure.
func BindAndValidateBody(c echo.Context, v runtime.Validatable) error {
	binder, ok := c.Echo().Binder.(*echo.DefaultBinder)
	if !ok {
		return echo.ErrInternalServerError
	}

	if err := binder.BindBody(c, v); err != nil {
		return err
	}

	return validatePayload(c, v)
}

// ValidateAndReturn validates the response payload and writes it as JSON.
func ValidateAndReturn(c echo.Context, code int, v runtime.Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		LogFromContext(c.Request().Context()).Error().Err(err).Msg("Response payload validation failed")
		return echo.ErrInternalServerError
	}

	return c.JSON(code, v)
}

func validatePayload(c echo.Context, v runtime.Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		details := formatValidationErrors(err)

		LogFromContext(c.Request().Context()).Debug().
			Int("validation_error_count", len(details)).
			Msg("Payload validation failed")

		return httperrors.NewHTTPValidationError(
			http.StatusBadRequest,
			types.PublicHTTPErrorTypeGeneric,
			http.StatusText(http.StatusBadRequest),
			details,
		)
	}

	return nil
}

func formatValidationErrors(err error) []*types.HTTPValidationErrorDetail {
	switch e := err.(type) { //nolint:errorlint // go-openapi composite errors are concrete types
	case *openapierrors.CompositeError:
		details := make([]*types.HTTPValidationErrorDetail, 0, len(e.Errors))
		for _, nested := range e.Errors {
			details = append(details, formatValidationErrors(nested)...)
		}

		return details
	case *openapierrors.Validation:
		return []*types.HTTPValidationErrorDetail{
			{
				Key:   swag.String(e.Name),
				In:    swag.String(e.In),
				Error: swag.String(e.Error()),
			},
		}
	default:
		return []*types.HTTPValidationErrorDetail{
			{
				Key:   swag.String("body"),
				In:    swag.String("body"),
				Error: swag.String(err.Error()),
			},
		}
	}
}
