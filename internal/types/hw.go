package types

import (
	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

// DeviceItem is one device in a registry snapshot.
type DeviceItem struct {
	// Required: true
	ID *string `json:"id"`

	Vendor          string   `json:"vendor,omitempty"`
	Model           string   `json:"model,omitempty"`
	FirmwareVersion string   `json:"firmwareVersion,omitempty"`
	Method          string   `json:"method,omitempty"`
	Apps            []string `json:"apps,omitempty"`

	// Required: true
	Status *string `json:"status"`

	// Required: true
	Lock *string `json:"lock"`

	SessionID       string          `json:"sessionId,omitempty"`
	LastConnectedAt strfmt.DateTime `json:"lastConnectedAt,omitempty"`
}

// Validate validates this device item
func (m *DeviceItem) Validate(_ strfmt.Registry) error {
	var res []error

	if err := validate.Required("id", "body", m.ID); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("status", "body", m.Status); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("lock", "body", m.Lock); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// GetDevicesResponse is the registry snapshot response, also returned by
// scans.
type GetDevicesResponse struct {
	// Required: true
	Devices []*DeviceItem `json:"devices"`
}

// Validate validates this get devices response
func (m *GetDevicesResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if m.Devices == nil {
		res = append(res, validate.Required("devices", "body", m.Devices))
	}

	for _, device := range m.Devices {
		if device == nil {
			continue
		}
		if err := device.Validate(formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// AccountItem is one derived account.
type AccountItem struct {
	// Required: true
	Address *string `json:"address"`

	// Required: true
	Index *int64 `json:"index"`

	// Required: true
	DerivationPath *string `json:"derivationPath"`
}

// Validate validates this account item
func (m *AccountItem) Validate(_ strfmt.Registry) error {
	var res []error

	if err := validate.Required("address", "body", m.Address); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("index", "body", m.Index); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("derivationPath", "body", m.DerivationPath); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// GetAccountsResponse is a bounded page of derived accounts.
type GetAccountsResponse struct {
	// Required: true
	Accounts []*AccountItem `json:"accounts"`
}

// Validate validates this get accounts response
func (m *GetAccountsResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if m.Accounts == nil {
		res = append(res, validate.Required("accounts", "body", m.Accounts))
	}

	for _, account := range m.Accounts {
		if account == nil {
			continue
		}
		if err := account.Validate(formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// PostSigningRequestPayload submits a payload for signing on a device
// account.
type PostSigningRequestPayload struct {
	// Required: true
	DeviceID *string `json:"deviceId"`

	// Required: true
	DerivationPath *string `json:"derivationPath"`

	// one of: message, transaction
	// Required: true
	RequestType *string `json:"requestType"`

	// Raw payload bytes
	// Required: true
	Data *strfmt.Base64 `json:"data"`

	// Human-readable summary shown on consumer surfaces
	Summary string `json:"summary,omitempty"`
}

// Validate validates this post signing request payload
func (m *PostSigningRequestPayload) Validate(_ strfmt.Registry) error {
	var res []error

	if err := validate.Required("deviceId", "body", m.DeviceID); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("derivationPath", "body", m.DerivationPath); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("requestType", "body", m.RequestType); err != nil {
		res = append(res, err)
	} else if err := validate.Enum("requestType", "body", *m.RequestType, []any{"message", "transaction"}); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("data", "body", m.Data); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// SigningRequestResponse is the full state of one signing request.
type SigningRequestResponse struct {
	// Required: true
	ID *int64 `json:"id"`

	// Required: true
	DeviceID *string `json:"deviceId"`

	// Required: true
	Status *string `json:"status"`

	AccountAddress string          `json:"accountAddress,omitempty"`
	DerivationPath string          `json:"derivationPath,omitempty"`
	RequestType    string          `json:"requestType,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	CreatedAt      strfmt.DateTime `json:"createdAt,omitempty"`

	// Signature bytes, present once status is signed
	Signature strfmt.Base64 `json:"signature,omitempty"`

	// Failure reason, present for error and cancelled states
	Reason        string `json:"reason,omitempty"`
	FailureDetail string `json:"failureDetail,omitempty"`
}

// Validate validates this signing request response
func (m *SigningRequestResponse) Validate(_ strfmt.Registry) error {
	var res []error

	if err := validate.Required("id", "body", m.ID); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("deviceId", "body", m.DeviceID); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("status", "body", m.Status); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// GetSigningRequestsResponse lists all retained signing requests.
type GetSigningRequestsResponse struct {
	// Required: true
	SigningRequests []*SigningRequestResponse `json:"signingRequests"`
}

// Validate validates this get signing requests response
func (m *GetSigningRequestsResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if m.SigningRequests == nil {
		res = append(res, validate.Required("signingRequests", "body", m.SigningRequests))
	}

	for _, request := range m.SigningRequests {
		if request == nil {
			continue
		}
		if err := request.Validate(formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// PostTrimSigningHistoryResponse reports how many terminal signing requests
// were dropped.
type PostTrimSigningHistoryResponse struct {
	// Required: true
	Removed *int64 `json:"removed"`
}

// Validate validates this post trim signing history response
func (m *PostTrimSigningHistoryResponse) Validate(_ strfmt.Registry) error {
	if err := validate.Required("removed", "body", m.Removed); err != nil {
		return err
	}

	return nil
}

// EventItem is one lifecycle event on the stream.
type EventItem struct {
	// Required: true
	Type *string `json:"type"`

	DeviceID  string          `json:"deviceId,omitempty"`
	RequestID int64           `json:"requestId,omitempty"`
	Detail    string          `json:"detail,omitempty"`
	At        strfmt.DateTime `json:"at,omitempty"`
}

// Validate validates this event item
func (m *EventItem) Validate(_ strfmt.Registry) error {
	if err := validate.Required("type", "body", m.Type); err != nil {
		return err
	}

	return nil
}

// PostSigningRequestResponse acknowledges a queued signing request.
type PostSigningRequestResponse struct {
	// Required: true
	ID *int64 `json:"id"`

	// Required: true
	Status *string `json:"status"`
}

// Validate validates this post signing request response
func (m *PostSigningRequestResponse) Validate(_ strfmt.Registry) error {
	var res []error

	if err := validate.Required("id", "body", m.ID); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("status", "body", m.Status); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}
