package httperrors

import (
	"net/http"

	"github/chapool/hw-bridge/internal/types"
)

var (
	ErrNotFoundDevice = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeDeviceNotFound, "Device is not known to the registry.")

	ErrNotFoundSigningRequest = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeSigningRequestNotFound, "Signing request does not exist.")

	ErrConflictAlreadyConnecting = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeAlreadyConnecting, "A connect attempt for this device is already in flight.")

	ErrConflictAlreadyDispatched = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeAlreadyDispatched, "The signing request was already dispatched to the device and can no longer be cancelled.")

	ErrConflictDeviceNotReady = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeDeviceNotReady, "Device must be connected and unlocked for this operation.")

	ErrLockedDevice = NewHTTPError(http.StatusLocked, types.PublicHTTPErrorTypeDeviceLocked, "Device reported a passcode lock. Unlock it on the device and retry.")

	ErrBadGatewayTransport = NewHTTPError(http.StatusBadGateway, types.PublicHTTPErrorTypeTransportError, "Transport failure while talking to the device.")
)
