package hw

import (
	"github.com/pkg/errors"
	"github/chapool/hw-bridge/internal/api/httperrors"
	"github/chapool/hw-bridge/internal/hwwallet"
)

// mapHWError translates core sentinel errors into their public HTTP
// counterparts. Anything unmapped falls through to the generic 500 rendering.
func mapHWError(err error) error {
	switch {
	case errors.Is(err, hwwallet.ErrDeviceNotFound):
		return httperrors.ErrNotFoundDevice
	case errors.Is(err, hwwallet.ErrRequestNotFound):
		return httperrors.ErrNotFoundSigningRequest
	case errors.Is(err, hwwallet.ErrAlreadyConnecting):
		return httperrors.ErrConflictAlreadyConnecting
	case errors.Is(err, hwwallet.ErrAlreadyDispatched):
		return httperrors.ErrConflictAlreadyDispatched
	case errors.Is(err, hwwallet.ErrDeviceLocked):
		return httperrors.ErrLockedDevice
	case errors.Is(err, hwwallet.ErrDeviceNotReady):
		return httperrors.ErrConflictDeviceNotReady
	case errors.Is(err, hwwallet.ErrTransport):
		return httperrors.ErrBadGatewayTransport
	default:
		return err
	}
}
