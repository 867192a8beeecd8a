package transport

import (
	"context"

	"github.com/pkg/errors"
)

// Sentinel errors reported by adapter implementations. The core maps these
// onto its own error taxonomy and never inspects anything below them.
var (
	// ErrLocked is returned by Open when the device requires a PIN/passcode
	// entry on the device itself before it accepts commands.
	ErrLocked = errors.New("device is locked")

	// ErrRejected is returned by Sign when the user refused the operation on
	// the device screen.
	ErrRejected = errors.New("user rejected on device")

	// ErrNotFound is returned by Open for an ID the transport cannot resolve.
	ErrNotFound = errors.New("device not found on transport")

	// ErrUnavailable covers transient transport failures (unplugged cable,
	// dropped bluetooth link, bridge not responding).
	ErrUnavailable = errors.New("transport unavailable")
)

// Adapter performs the actual scan/connect/exchange per connection method.
// Implementations own the byte-level protocol (APDU framing etc.); the core
// calls them through this interface only.
type Adapter interface {
	// ScanAll enumerates devices over every connection method the adapter
	// supports and returns their descriptors.
	ScanAll(ctx context.Context) ([]DeviceDescriptor, error)

	// Open establishes a connection to a device. Returns ErrLocked when the
	// device reports a passcode lock, ErrNotFound for unknown IDs and
	// ErrUnavailable for transport failures.
	Open(ctx context.Context, deviceID string) (Conn, error)
}

// Conn is an open exchange channel to a single device. A physical device can
// only process one command at a time; callers must serialize all calls on a
// Conn themselves.
type Conn interface {
	// ListAccounts asks the device to derive the accounts for a bounded page
	// of derivation indices.
	ListAccounts(ctx context.Context, pathRange PathRange) ([]AccountDescriptor, error)

	// Sign performs the signing exchange for one payload. Blocks until the
	// user confirms or rejects on the device, the context is cancelled, or
	// the transport fails.
	Sign(ctx context.Context, derivationPath string, payload []byte) ([]byte, error)

	// Close releases the transport handle. Idempotent.
	Close() error
}
