package hwwallet

import (
	"time"

	"github/chapool/hw-bridge/internal/hwwallet/connection"
	"github/chapool/hw-bridge/internal/hwwallet/derivation"
	"github/chapool/hw-bridge/internal/hwwallet/events"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
	"github/chapool/hw-bridge/internal/hwwallet/signing"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

// Aliases re-export the sub-package types consumers interact with, so the
// facade is a single import for UI-facing collaborators.
type (
	Device      = registry.Device
	Account     = derivation.Account
	Request     = signing.Request
	RequestType = signing.RequestType
	Status      = signing.Status
	Payload     = signing.Payload
	Event       = events.Event
	PathRange   = transport.PathRange
)

// Signing request lifecycle re-exports.
const (
	TypeMessage     = signing.TypeMessage
	TypeTransaction = signing.TypeTransaction
	StatusPending   = signing.StatusPending
	StatusSigned    = signing.StatusSigned
	StatusError     = signing.StatusError
	StatusCancelled = signing.StatusCancelled
)

// Error aliases for consumer-side errors.Is checks.
var (
	ErrDeviceNotFound    = connection.ErrDeviceNotFound
	ErrAlreadyConnecting = connection.ErrAlreadyConnecting
	ErrDeviceLocked      = connection.ErrDeviceLocked
	ErrDeviceNotReady    = connection.ErrDeviceNotReady
	ErrTransport         = connection.ErrTransport
	ErrRequestNotFound   = signing.ErrRequestNotFound
	ErrAlreadyDispatched = signing.ErrAlreadyDispatched
	ErrInvalidRange      = derivation.ErrInvalidRange
)

// Config tunes the core. Zero values fall back to the defaults below.
type Config struct {
	DerivationMaxPage int
	EventBufferSize   int
	SigningTimeout    time.Duration
	VendorTimeouts    map[transport.Vendor]time.Duration
}

const (
	defaultDerivationMaxPage = 100
	defaultSigningTimeout    = 45 * time.Second
)

func (c Config) withDefaults() Config {
	if c.DerivationMaxPage <= 0 {
		c.DerivationMaxPage = defaultDerivationMaxPage
	}
	if c.SigningTimeout <= 0 {
		c.SigningTimeout = defaultSigningTimeout
	}

	return c
}
