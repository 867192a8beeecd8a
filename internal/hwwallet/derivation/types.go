package derivation

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

// ErrInvalidRange rejects unbounded or oversized derivation pages. Device
// round-trips must stay predictable, so callers always name a bounded range.
var ErrInvalidRange = errors.New("invalid derivation path range")

// Account is a derived account, unique per (device, derivation path) within
// one device session.
type Account struct {
	DeviceID       string
	SessionID      string
	Address        string
	Index          int
	DerivationPath string
}

// PathRange is re-exported for callers of LoadAccounts.
type PathRange = transport.PathRange

// Service derives bounded pages of accounts from connected, unlocked devices
// and caches the results per device session.
type Service interface {
	// LoadAccounts returns the accounts for a bounded index range. Results
	// are cached per (device, session); concurrent calls for the same device
	// share a single device exchange.
	LoadAccounts(ctx context.Context, deviceID string, pathRange PathRange) ([]*Account, error)

	// Lookup resolves a cached account by derivation path within a specific
	// device session. Used by the signing orchestrator to validate that a
	// submitted account belongs to the device's current session.
	Lookup(deviceID, sessionID, derivationPath string) (*Account, bool)
}
