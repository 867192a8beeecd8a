package signing

import (
	"context"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github/chapool/hw-bridge/internal/hwwallet/connection"
	"github/chapool/hw-bridge/internal/hwwallet/derivation"
	"github/chapool/hw-bridge/internal/hwwallet/events"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

// inflight tracks the single actively dispatched exchange of a device.
type inflight struct {
	requestID    uint64
	cancel       context.CancelFunc
	disconnected bool
}

// deviceQueue is the FIFO request queue plus worker state for one device.
type deviceQueue struct {
	pending  []uint64
	inflight *inflight
	running  bool
}

type orchestrator struct {
	registry    registry.Registry
	connections connection.Manager
	accounts    derivation.Service
	notifier    events.Notifier
	clock       time2.Clock
	config      Config

	mu       sync.Mutex
	requests map[uint64]*Request
	queues   map[string]*deviceQueue
	nextID   uint64
	closed   bool
	workers  sync.WaitGroup
}

// NewOrchestrator creates the signing orchestrator and registers it as a
// connection lifecycle listener so disconnects propagate to its queues.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewOrchestrator(
	reg registry.Registry,
	connections connection.Manager,
	accounts derivation.Service,
	notifier events.Notifier,
	clock time2.Clock,
	config Config,
) Orchestrator {
	o := &orchestrator{
		registry:    reg,
		connections: connections,
		accounts:    accounts,
		notifier:    notifier,
		clock:       clock,
		config:      config,
		requests:    make(map[uint64]*Request),
		queues:      make(map[string]*deviceQueue),
	}

	connections.AddListener(o)

	return o
}

func (o *orchestrator) Submit(_ context.Context, deviceID, derivationPath string, payload Payload) (uint64, error) {
	device, ok := o.registry.Get(deviceID)
	if !ok {
		return 0, connection.ErrDeviceNotFound
	}
	if !device.Ready() {
		return 0, connection.ErrDeviceNotReady
	}

	sessionID, ok := o.connections.Session(deviceID)
	if !ok {
		return 0, connection.ErrDeviceNotReady
	}

	account, ok := o.accounts.Lookup(deviceID, sessionID, derivationPath)
	if !ok {
		return 0, errors.Wrapf(connection.ErrDeviceNotReady, "account %s not derived in current session", derivationPath)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, ErrShuttingDown
	}

	o.nextID++
	request := &Request{
		ID:             o.nextID,
		DeviceID:       deviceID,
		SessionID:      sessionID,
		AccountAddress: account.Address,
		DerivationPath: derivationPath,
		Payload:        payload,
		Status:         StatusPending,
		CreatedAt:      o.clock.Now(),
	}
	o.requests[request.ID] = request

	queue := o.queue(deviceID)
	queue.pending = append(queue.pending, request.ID)
	o.ensureWorkerLocked(deviceID, queue)

	log.Debug().
		Uint64("request_id", request.ID).
		Str("device_id", deviceID).
		Str("request_type", string(payload.Type)).
		Msg("Signing request queued")

	return request.ID, nil
}

func (o *orchestrator) Get(id uint64) (*Request, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	request, ok := o.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}

	return cloneRequest(request), nil
}

func (o *orchestrator) List() []*Request {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshots := make([]*Request, 0, len(o.requests))
	for _, request := range o.requests {
		snapshots = append(snapshots, cloneRequest(request))
	}

	return snapshots
}

func (o *orchestrator) Cancel(id uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	request, ok := o.requests[id]
	if !ok {
		return ErrRequestNotFound
	}

	if request.Status.Terminal() {
		return ErrAlreadyDispatched
	}

	queue := o.queue(request.DeviceID)
	if queue.inflight != nil && queue.inflight.requestID == id {
		return ErrAlreadyDispatched
	}

	request.Status = StatusCancelled
	request.Reason = ReasonCallerCancelled
	queue.dropPending(id)

	log.Debug().Uint64("request_id", id).Msg("Signing request cancelled before dispatch")

	return nil
}

func (o *orchestrator) TrimHistory(before time.Time) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	trimmed := 0
	for id, request := range o.requests {
		if request.Status.Terminal() && request.CreatedAt.Before(before) {
			delete(o.requests, id)
			trimmed++
		}
	}

	return trimmed
}

func (o *orchestrator) Shutdown(_ context.Context) {
	o.mu.Lock()
	o.closed = true
	for _, queue := range o.queues {
		if queue.inflight != nil {
			queue.inflight.cancel()
		}
	}
	o.mu.Unlock()

	o.workers.Wait()
}

// DeviceConnected implements connection.Listener.
func (o *orchestrator) DeviceConnected(_, _ string) {}

// DeviceDisconnected implements connection.Listener. Queued requests cancel
// with reason device_disconnected; the in-flight exchange is interrupted and
// lands in error state, never silently dropped.
func (o *orchestrator) DeviceDisconnected(deviceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	queue, ok := o.queues[deviceID]
	if !ok {
		return
	}

	for _, id := range queue.pending {
		request := o.requests[id]
		if request == nil || request.Status.Terminal() {
			continue
		}
		request.Status = StatusCancelled
		request.Reason = ReasonDeviceDisconnected
	}
	queue.pending = queue.pending[:0]

	if queue.inflight != nil {
		queue.inflight.disconnected = true
		queue.inflight.cancel()
	}
}

func (o *orchestrator) queue(deviceID string) *deviceQueue {
	queue, ok := o.queues[deviceID]
	if !ok {
		queue = &deviceQueue{}
		o.queues[deviceID] = queue
	}

	return queue
}

func (q *deviceQueue) dropPending(id uint64) {
	for i, pending := range q.pending {
		if pending == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// ensureWorkerLocked starts the per-device dispatch worker if it is not
// already draining the queue. Callers hold o.mu.
func (o *orchestrator) ensureWorkerLocked(deviceID string, queue *deviceQueue) {
	if queue.running {
		return
	}

	queue.running = true
	o.workers.Add(1)
	go o.dispatchLoop(deviceID)
}

// dispatchLoop drains one device's queue strictly serially. It exits when the
// queue is empty and restarts on the next submission, so idle devices hold no
// goroutine.
func (o *orchestrator) dispatchLoop(deviceID string) {
	defer o.workers.Done()

	for {
		o.mu.Lock()

		queue := o.queue(deviceID)
		if o.closed {
			queue.running = false
			o.mu.Unlock()
			return
		}

		request := o.nextDispatchableLocked(queue)
		if request == nil {
			queue.running = false
			o.mu.Unlock()
			return
		}

		conn, sessionID, connected := o.connections.Conn(deviceID)
		if !connected || sessionID != request.SessionID {
			// Lost the session between submit and dispatch.
			request.Status = StatusError
			request.Reason = ReasonDeviceDisconnected
			request.FailureDetail = "device disconnected before dispatch"
			o.publishFailureLocked(request)
			o.mu.Unlock()
			continue
		}

		timeout := o.timeoutForLocked(deviceID)
		dispatchCtx, cancel := context.WithTimeout(context.Background(), timeout)
		queue.inflight = &inflight{requestID: request.ID, cancel: cancel}
		path := request.DerivationPath
		data := request.Payload.Data
		o.mu.Unlock()

		signature, err := conn.Sign(dispatchCtx, path, data)
		cancel()

		o.mu.Lock()
		flight := queue.inflight
		queue.inflight = nil
		o.finalizeLocked(request, flight, dispatchCtx, signature, err)
		o.mu.Unlock()
	}
}

// nextDispatchableLocked pops queued IDs until it finds one still pending,
// skipping entries that were cancelled while waiting.
func (o *orchestrator) nextDispatchableLocked(queue *deviceQueue) *Request {
	for len(queue.pending) > 0 {
		id := queue.pending[0]
		queue.pending = queue.pending[1:]

		request := o.requests[id]
		if request != nil && request.Status == StatusPending {
			return request
		}
	}

	return nil
}

func (o *orchestrator) timeoutForLocked(deviceID string) time.Duration {
	vendor := transport.VendorOther
	if device, ok := o.registry.Get(deviceID); ok {
		vendor = device.Vendor
	}

	return o.config.TimeoutFor(vendor)
}

// finalizeLocked records the terminal outcome of a dispatched exchange.
// Callers hold o.mu.
func (o *orchestrator) finalizeLocked(request *Request, flight *inflight, dispatchCtx context.Context, signature []byte, err error) {
	if err == nil {
		request.Status = StatusSigned
		request.Signature = signature

		o.notifier.Publish(events.Event{
			Type:      events.TypeSigningCompleted,
			DeviceID:  request.DeviceID,
			RequestID: request.ID,
			At:        o.clock.Now(),
		})

		log.Info().
			Uint64("request_id", request.ID).
			Str("device_id", request.DeviceID).
			Msg("Signing request completed")

		return
	}

	request.Status = StatusError
	request.FailureDetail = err.Error()

	switch {
	case flight != nil && flight.disconnected:
		request.Reason = ReasonDeviceDisconnected
	case errors.Is(dispatchCtx.Err(), context.DeadlineExceeded):
		request.Reason = ReasonTimeout
	case errors.Is(err, transport.ErrRejected):
		request.Reason = ReasonUserRejected
	default:
		request.Reason = ReasonTransportError
	}

	o.publishFailureLocked(request)

	log.Info().
		Uint64("request_id", request.ID).
		Str("device_id", request.DeviceID).
		Str("reason", string(request.Reason)).
		Msg("Signing request failed")
}

func (o *orchestrator) publishFailureLocked(request *Request) {
	o.notifier.Publish(events.Event{
		Type:      events.TypeSigningFailed,
		DeviceID:  request.DeviceID,
		RequestID: request.ID,
		Detail:    string(request.Reason),
		At:        o.clock.Now(),
	})
}

func cloneRequest(request *Request) *Request {
	cloned := *request
	cloned.Signature = append([]byte(nil), request.Signature...)
	cloned.Payload.Data = append([]byte(nil), request.Payload.Data...)

	return &cloned
}
