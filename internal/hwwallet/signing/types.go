package signing

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

var (
	// ErrRequestNotFound is returned for unknown request IDs.
	ErrRequestNotFound = errors.New("signing request not found")

	// ErrAlreadyDispatched refuses cancellation once the device exchange has
	// begun. Hardware devices cannot abort a started exchange.
	ErrAlreadyDispatched = errors.New("signing request already dispatched")

	// ErrShuttingDown rejects submissions during orchestrator shutdown.
	ErrShuttingDown = errors.New("signing orchestrator is shutting down")
)

// RequestType distinguishes message from transaction signing.
type RequestType string

const (
	TypeMessage     RequestType = "message"
	TypeTransaction RequestType = "transaction"
)

// Status is the lifecycle state of a signing request. Signed, error and
// cancelled are terminal; a terminal request's status and result never
// change.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSigned    Status = "signed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSigned || s == StatusError || s == StatusCancelled
}

// FailureReason classifies terminal error and cancellation causes.
type FailureReason string

const (
	ReasonUserRejected       FailureReason = "user_rejected"
	ReasonTransportError     FailureReason = "transport_error"
	ReasonTimeout            FailureReason = "timeout"
	ReasonDeviceDisconnected FailureReason = "device_disconnected"
	ReasonCallerCancelled    FailureReason = "caller_cancelled"
)

// Payload is the opaque bytes to sign plus a human-readable summary for
// display on consumer surfaces.
type Payload struct {
	Type    RequestType
	Data    []byte
	Summary string
}

// Request is one signing request. Snapshots returned by the orchestrator are
// copies; mutation happens only inside the dispatch machinery.
type Request struct {
	ID             uint64
	DeviceID       string
	SessionID      string
	AccountAddress string
	DerivationPath string
	Payload        Payload
	Status         Status
	CreatedAt      time.Time
	Signature      []byte
	Reason         FailureReason
	FailureDetail  string
}

// Config tunes dispatch timeouts. Confirmation UI flows differ per vendor,
// so the default budget can be overridden per device family.
type Config struct {
	DefaultTimeout time.Duration
	VendorTimeouts map[transport.Vendor]time.Duration
}

// TimeoutFor resolves the dispatch budget for a vendor.
func (c Config) TimeoutFor(vendor transport.Vendor) time.Duration {
	if timeout, ok := c.VendorTimeouts[vendor]; ok && timeout > 0 {
		return timeout
	}

	return c.DefaultTimeout
}

// Orchestrator queues signing requests per device and dispatches them
// strictly serially per device, fully parallel across devices.
type Orchestrator interface {
	// Submit validates the target and enqueues a request, returning its ID
	// immediately. Dispatch happens asynchronously in FIFO order.
	Submit(ctx context.Context, deviceID, derivationPath string, payload Payload) (uint64, error)

	// Get returns a snapshot of a request. Reads are idempotent; terminal
	// results never change.
	Get(id uint64) (*Request, error)

	// List returns snapshots of all retained requests.
	List() []*Request

	// Cancel marks a still-queued request cancelled. Refused with
	// ErrAlreadyDispatched once the device exchange has started.
	Cancel(id uint64) error

	// TrimHistory drops terminal requests created before the cutoff and
	// returns how many were removed. This is the only request GC.
	TrimHistory(before time.Time) int

	// Shutdown cancels in-flight exchanges and stops the dispatch workers.
	Shutdown(ctx context.Context)
}
