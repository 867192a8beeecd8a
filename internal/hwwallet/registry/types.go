package registry

import (
	"time"

	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

// Descriptor is the transport-reported device descriptor merged on upsert.
type Descriptor = transport.DeviceDescriptor

// ConnectionStatus is the connection state of a device. Devices cycle
// disconnected -> connecting -> connected -> disconnected indefinitely.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
)

// LockStatus is the passcode lock sub-state, orthogonal to the connection
// state and only authoritative while the device is connected.
type LockStatus string

const (
	LockLocked   LockStatus = "locked"
	LockUnlocked LockStatus = "unlocked"
	LockUnknown  LockStatus = "unknown"
)

// Device is the registry entry for a discovered hardware signing device.
// Status, Lock, SessionID and LastConnectedAt are mutated only by the
// connection manager.
type Device struct {
	ID              string
	Vendor          transport.Vendor
	Model           string
	FirmwareVersion string
	Method          transport.Method
	Apps            []string
	Status          ConnectionStatus
	Lock            LockStatus
	SessionID       string
	LastConnectedAt time.Time
}

// Ready reports whether the device can accept derivation or signing commands.
func (d *Device) Ready() bool {
	return d.Status == StatusConnected && d.Lock == LockUnlocked
}

func (d *Device) clone() *Device {
	if d == nil {
		return nil
	}

	cloned := *d
	cloned.Apps = append([]string(nil), d.Apps...)

	return &cloned
}
