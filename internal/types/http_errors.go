package types

import (
	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

// Public error types surfaced to API consumers.
const (
	PublicHTTPErrorTypeGeneric                = "generic"
	PublicHTTPErrorTypeDeviceNotFound         = "DEVICE_NOT_FOUND"
	PublicHTTPErrorTypeDeviceLocked           = "DEVICE_LOCKED"
	PublicHTTPErrorTypeDeviceNotReady         = "DEVICE_NOT_READY"
	PublicHTTPErrorTypeAlreadyConnecting      = "ALREADY_CONNECTING"
	PublicHTTPErrorTypeAlreadyDispatched      = "ALREADY_DISPATCHED"
	PublicHTTPErrorTypeTransportError         = "TRANSPORT_ERROR"
	PublicHTTPErrorTypeSigningRequestNotFound = "SIGNING_REQUEST_NOT_FOUND"
)

// PublicHTTPError is the wire shape of every error response.
type PublicHTTPError struct {
	// HTTP status code
	// Required: true
	Code *int64 `json:"status"`

	// Error title
	// Required: true
	Title *string `json:"title"`

	// Machine-readable error type
	// Required: true
	Type *string `json:"type"`
}

// Validate validates this public http error
func (m *PublicHTTPError) Validate(_ strfmt.Registry) error {
	var res []error

	if err := validate.Required("status", "body", m.Code); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("title", "body", m.Title); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("type", "body", m.Type); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// HTTPValidationErrorDetail describes one failed payload field.
type HTTPValidationErrorDetail struct {
	// Error describing field validation failure
	// Required: true
	Error *string `json:"error"`

	// Indicates how the invalid field was provided
	// Required: true
	In *string `json:"in"`

	// Key of field failing validation
	// Required: true
	Key *string `json:"key"`
}

// Validate validates this http validation error detail
func (m *HTTPValidationErrorDetail) Validate(_ strfmt.Registry) error {
	var res []error

	if err := validate.Required("error", "body", m.Error); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("in", "body", m.In); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("key", "body", m.Key); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// PublicHTTPValidationError extends PublicHTTPError with field details.
type PublicHTTPValidationError struct {
	PublicHTTPError

	// List of failed fields
	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors"`
}

// Validate validates this public http validation error
func (m *PublicHTTPValidationError) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.PublicHTTPError.Validate(formats); err != nil {
		res = append(res, err)
	}

	for _, detail := range m.ValidationErrors {
		if detail == nil {
			continue
		}
		if err := detail.Validate(formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}
