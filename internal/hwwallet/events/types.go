package events

import "time"

// Type enumerates the lifecycle events the core emits.
type Type string

const (
	TypeDeviceConnected    Type = "device_connected"
	TypeDeviceDisconnected Type = "device_disconnected"
	TypeDeviceError        Type = "device_error"
	TypeSigningCompleted   Type = "signing_completed"
	TypeSigningFailed      Type = "signing_failed"
)

// Event is one entry on the notification stream. RequestID is set for signing
// events, Detail for device errors and signing failure reasons.
type Event struct {
	Type      Type
	DeviceID  string
	RequestID uint64
	Detail    string
	At        time.Time
}
