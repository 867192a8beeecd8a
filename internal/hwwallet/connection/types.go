package connection

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

var (
	// ErrDeviceNotFound is returned for device IDs the registry has never
	// observed or that already vanished.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrAlreadyConnecting rejects a duplicate concurrent connect attempt
	// for the same device.
	ErrAlreadyConnecting = errors.New("connect already in flight for device")

	// ErrDeviceLocked is returned when the device reports a passcode lock on
	// connect. The caller must have the user unlock the device and retry.
	ErrDeviceLocked = errors.New("device is locked")

	// ErrTransport wraps transient adapter failures.
	ErrTransport = errors.New("transport error")

	// ErrDeviceNotReady rejects derivation or signing against a device that
	// is not connected and unlocked. Precondition violation, not retried
	// automatically.
	ErrDeviceNotReady = errors.New("device not connected and unlocked")
)

// Listener observes device lifecycle transitions. The signing orchestrator
// and the derivation cache register themselves so disconnects propagate to
// queued requests and cached accounts.
type Listener interface {
	// DeviceConnected fires after a device enters the connected state with a
	// fresh session.
	DeviceConnected(deviceID, sessionID string)

	// DeviceDisconnected fires after a device leaves the connected state,
	// whether by explicit disconnect or a vanish signal.
	DeviceDisconnected(deviceID string)
}

// Manager owns the lifecycle of at most one active transport connection per
// device and is the only component allowed to write device status.
type Manager interface {
	// Scan runs all transport adapters, merges the discovered descriptors
	// into the registry and returns the full merged device list. Devices
	// missing from a pass are kept; removal requires an explicit vanish.
	Scan(ctx context.Context) ([]*registry.Device, error)

	// Connect opens a transport connection and transitions the device
	// disconnected -> connecting -> connected. Entering connected starts a
	// new session, which invalidates stale cached accounts.
	Connect(ctx context.Context, deviceID string) (*registry.Device, error)

	// Disconnect closes the active connection and transitions the device to
	// disconnected. Idempotent for devices that are not connected.
	Disconnect(ctx context.Context, deviceID string) error

	// HandleVanished processes an explicit "device vanished" transport
	// signal: tears down any active connection and removes the registry
	// entry.
	HandleVanished(ctx context.Context, deviceID string)

	// Session returns the current session ID of a connected device.
	Session(deviceID string) (string, bool)

	// Conn returns the active transport connection and its session ID.
	// Callers must serialize their use of the connection.
	Conn(deviceID string) (transport.Conn, string, bool)

	// AddListener registers a lifecycle listener. Not safe to call after the
	// manager is in use.
	AddListener(listener Listener)

	// Shutdown disconnects every connected device.
	Shutdown(ctx context.Context)
}
