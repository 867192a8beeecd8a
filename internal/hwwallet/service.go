package hwwallet

import (
	"context"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/rs/zerolog/log"

	"github/chapool/hw-bridge/internal/hwwallet/connection"
	"github/chapool/hw-bridge/internal/hwwallet/derivation"
	"github/chapool/hw-bridge/internal/hwwallet/events"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
	"github/chapool/hw-bridge/internal/hwwallet/signing"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
	"github/chapool/hw-bridge/internal/metrics"
)

// Service is the single owned orchestrator instance for hardware-wallet
// operations: it wires the registry, connection manager, derivation service,
// signing orchestrator and event notifier together and exposes the
// consumer-facing operations as pure data in/out. Created at process start,
// torn down with Shutdown; passed by reference to whatever consumes it.
type Service struct {
	registry    registry.Registry
	connections connection.Manager
	accounts    derivation.Service
	signing     signing.Orchestrator
	notifier    events.Notifier
	metrics     *metrics.Service

	stopMetricsBridge func()
}

// NewService builds the core over the given transport adapters. The metrics
// service may be nil.
func NewService(adapters []transport.Adapter, clock time2.Clock, metricsService *metrics.Service, config Config) *Service {
	config = config.withDefaults()

	reg := registry.New()
	notifier := events.New(config.EventBufferSize)
	connections := connection.NewManager(reg, adapters, notifier, clock)
	accounts := derivation.NewService(reg, connections, config.DerivationMaxPage)
	orchestrator := signing.NewOrchestrator(reg, connections, accounts, notifier, clock, signing.Config{
		DefaultTimeout: config.SigningTimeout,
		VendorTimeouts: config.VendorTimeouts,
	})

	s := &Service{
		registry:    reg,
		connections: connections,
		accounts:    accounts,
		signing:     orchestrator,
		notifier:    notifier,
		metrics:     metricsService,
	}

	if metricsService != nil {
		s.stopMetricsBridge = s.bridgeMetrics(metricsService)
	}

	return s
}

// Scan discovers devices over all transports and returns the merged list.
func (s *Service) Scan(ctx context.Context) ([]*Device, error) {
	devices, err := s.connections.Scan(ctx)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ScanPerformed()
	}

	return devices, nil
}

// ListDevices returns a registry snapshot (pull-based counterpart to the
// event stream).
func (s *Service) ListDevices() []*Device {
	return s.registry.List()
}

// GetDevice returns one device snapshot.
func (s *Service) GetDevice(id string) (*Device, error) {
	device, ok := s.registry.Get(id)
	if !ok {
		return nil, ErrDeviceNotFound
	}

	return device, nil
}

// Connect opens the device connection and starts a fresh session.
func (s *Service) Connect(ctx context.Context, deviceID string) (*Device, error) {
	return s.connections.Connect(ctx, deviceID)
}

// Disconnect tears down the device connection; queued signing requests for
// the device cancel and the in-flight one errors.
func (s *Service) Disconnect(ctx context.Context, deviceID string) error {
	return s.connections.Disconnect(ctx, deviceID)
}

// HandleVanished processes an explicit transport vanish signal.
func (s *Service) HandleVanished(ctx context.Context, deviceID string) {
	s.connections.HandleVanished(ctx, deviceID)
}

// LoadAccounts derives a bounded page of accounts from a ready device.
func (s *Service) LoadAccounts(ctx context.Context, deviceID string, pathRange PathRange) ([]*Account, error) {
	return s.accounts.LoadAccounts(ctx, deviceID, pathRange)
}

// Submit enqueues a signing request and returns its ID immediately.
func (s *Service) Submit(ctx context.Context, deviceID, derivationPath string, payload Payload) (uint64, error) {
	id, err := s.signing.Submit(ctx, deviceID, derivationPath, payload)
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.SigningSubmitted()
	}

	return id, nil
}

// GetRequest returns a signing request snapshot; terminal results are stable
// across repeated reads.
func (s *Service) GetRequest(id uint64) (*Request, error) {
	return s.signing.Get(id)
}

// ListRequests returns all retained signing requests.
func (s *Service) ListRequests() []*Request {
	return s.signing.List()
}

// Cancel soft-cancels a still-queued signing request.
func (s *Service) Cancel(id uint64) error {
	return s.signing.Cancel(id)
}

// TrimHistory drops terminal requests older than the cutoff. Explicit
// trimming is the only way requests are garbage-collected.
func (s *Service) TrimHistory(before time.Time) int {
	return s.signing.TrimHistory(before)
}

// Subscribe attaches a consumer to the lifecycle event stream.
func (s *Service) Subscribe() (<-chan Event, func()) {
	return s.notifier.Subscribe()
}

// Shutdown stops dispatch workers, disconnects devices and closes all event
// subscriptions.
func (s *Service) Shutdown(ctx context.Context) {
	log.Info().Msg("Shutting down hardware wallet service")

	s.signing.Shutdown(ctx)
	s.connections.Shutdown(ctx)

	if s.stopMetricsBridge != nil {
		s.stopMetricsBridge()
	}

	s.notifier.Shutdown()
}

// bridgeMetrics feeds the event stream into the prometheus collectors. The
// bridge is just another subscriber; it never slows publishers down.
func (s *Service) bridgeMetrics(metricsService *metrics.Service) func() {
	ch, unsubscribe := s.notifier.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range ch {
			switch event.Type {
			case events.TypeDeviceConnected:
				metricsService.DeviceConnected()
			case events.TypeDeviceDisconnected:
				metricsService.DeviceDisconnected()
			case events.TypeSigningCompleted:
				metricsService.SigningFinished("signed")
			case events.TypeSigningFailed:
				metricsService.SigningFinished(event.Detail)
			case events.TypeDeviceError:
				// Connection failures surface through request state and the
				// consumer event stream; no dedicated collector.
			}
		}
	}()

	return func() {
		unsubscribe()
		<-done
	}
}
