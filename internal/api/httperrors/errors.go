package httperrors

import (
	"fmt"
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github/chapool/hw-bridge/internal/types"
)

// HTTPError is the service-internal error carrying the public wire shape
// plus optional internal context. The router's error handler renders it.
type HTTPError struct {
	types.PublicHTTPError
	Internal       error
	AdditionalData map[string]any
}

// NewHTTPError creates a new HTTPError with a public type and title.
func NewHTTPError(code int, errorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:  swag.Int64(int64(code)),
			Type:  swag.String(errorType),
			Title: swag.String(title),
		},
	}
}

// NewHTTPErrorWithInternal attaches an internal error that is logged but
// never sent to the client.
func NewHTTPErrorWithInternal(code int, errorType, title string, internal error) *HTTPError {
	httpError := NewHTTPError(code, errorType, title)
	httpError.Internal = internal

	return httpError
}

// NewFromEcho converts an echo.HTTPError into the public error shape the
// error handler renders, mostly useful for test assertions.
func NewFromEcho(e *echo.HTTPError) *HTTPError {
	title := http.StatusText(e.Code)
	if msg, ok := e.Message.(string); ok {
		title = msg
	}

	return NewHTTPError(e.Code, types.PublicHTTPErrorTypeGeneric, title)
}

func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("HTTPError %v (%v): %v, internal: %v", swag.Int64Value(e.Code), swag.StringValue(e.Type), swag.StringValue(e.Title), e.Internal)
	}

	return fmt.Sprintf("HTTPError %v (%v): %v", swag.Int64Value(e.Code), swag.StringValue(e.Type), swag.StringValue(e.Title))
}

// HTTPValidationError extends HTTPError with per-field details.
type HTTPValidationError struct {
	types.PublicHTTPValidationError
	Internal error
}

// NewHTTPValidationError creates a new HTTPValidationError.
func NewHTTPValidationError(code int, errorType, title string, validationErrors []*types.HTTPValidationErrorDetail) *HTTPValidationError {
	return &HTTPValidationError{
		PublicHTTPValidationError: types.PublicHTTPValidationError{
			PublicHTTPError: types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  swag.String(errorType),
				Title: swag.String(title),
			},
			ValidationErrors: validationErrors,
		},
	}
}

func (e *HTTPValidationError) Error() string {
	return fmt.Sprintf("HTTPValidationError %v (%v): %v (%d fields)", swag.Int64Value(e.Code), swag.StringValue(e.Type), swag.StringValue(e.Title), len(e.ValidationErrors))
}
