package connection

import (
	"context"
	"sync"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github/chapool/hw-bridge/internal/hwwallet/events"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

type active struct {
	conn      transport.Conn
	sessionID string
}

type manager struct {
	registry registry.Registry
	adapters []transport.Adapter
	notifier events.Notifier
	clock    time2.Clock

	mu         sync.Mutex
	connecting map[string]bool
	active     map[string]*active
	owner      map[string]transport.Adapter
	listeners  []Listener
}

// NewManager creates a connection manager over the given transport adapters,
// one per supported connection method.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewManager(reg registry.Registry, adapters []transport.Adapter, notifier events.Notifier, clock time2.Clock) Manager {
	return &manager{
		registry:   reg,
		adapters:   adapters,
		notifier:   notifier,
		clock:      clock,
		connecting: make(map[string]bool),
		active:     make(map[string]*active),
		owner:      make(map[string]transport.Adapter),
	}
}

func (m *manager) AddListener(listener Listener) {
	m.listeners = append(m.listeners, listener)
}

// Scan runs every adapter in parallel and merges results. A single failing
// adapter does not discard what the others discovered; the scan only fails
// when no adapter produced anything.
func (m *manager) Scan(ctx context.Context) ([]*registry.Device, error) {
	type scanResult struct {
		adapter     transport.Adapter
		descriptors []transport.DeviceDescriptor
	}

	var (
		resultMu sync.Mutex
		failures int
		lastErr  error
		results  []scanResult
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range m.adapters {
		g.Go(func() error {
			descriptors, err := adapter.ScanAll(gctx)

			resultMu.Lock()
			defer resultMu.Unlock()

			if err != nil {
				log.Warn().Err(err).Msg("Transport scan failed for adapter")
				failures++
				lastErr = err
				return nil
			}

			results = append(results, scanResult{adapter: adapter, descriptors: descriptors})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(ErrTransport, err.Error())
	}

	if failures == len(m.adapters) && failures > 0 {
		return nil, errors.Wrap(ErrTransport, lastErr.Error())
	}

	merged := 0
	m.mu.Lock()
	for _, result := range results {
		for _, descriptor := range result.descriptors {
			m.registry.Upsert(descriptor)
			m.owner[descriptor.ID] = result.adapter
			merged++
		}
	}
	m.mu.Unlock()

	log.Debug().Int("device_count", merged).Msg("Scan merged device descriptors")

	return m.registry.List(), nil
}

func (m *manager) Connect(ctx context.Context, deviceID string) (*registry.Device, error) {
	device, ok := m.registry.Get(deviceID)
	if !ok {
		return nil, ErrDeviceNotFound
	}

	m.mu.Lock()
	if m.connecting[deviceID] {
		m.mu.Unlock()
		return nil, ErrAlreadyConnecting
	}
	if _, connected := m.active[deviceID]; connected {
		m.mu.Unlock()
		// Already connected, return the current state instead of reopening.
		return device, nil
	}
	m.connecting[deviceID] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.connecting, deviceID)
		m.mu.Unlock()
	}()

	m.registry.Mutate(deviceID, func(d *registry.Device) {
		d.Status = registry.StatusConnecting
	})

	conn, err := m.open(ctx, deviceID)
	if err != nil {
		return nil, m.failConnect(deviceID, err)
	}

	sessionID := uuid.NewString()
	now := m.clock.Now()

	m.mu.Lock()
	m.active[deviceID] = &active{conn: conn, sessionID: sessionID}
	m.mu.Unlock()

	updated, ok := m.registry.Mutate(deviceID, func(d *registry.Device) {
		d.Status = registry.StatusConnected
		d.Lock = registry.LockUnlocked
		d.SessionID = sessionID
		d.LastConnectedAt = now
	})
	if !ok {
		// The device vanished while the transport was opening. Undo the
		// connection instead of leaking it against a registry-absent device.
		m.mu.Lock()
		if entry := m.active[deviceID]; entry != nil && entry.sessionID == sessionID {
			delete(m.active, deviceID)
		}
		delete(m.owner, deviceID)
		m.mu.Unlock()

		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to close transport connection")
		}

		log.Info().Str("device_id", deviceID).Msg("Device vanished during connect")

		return nil, ErrDeviceNotFound
	}

	for _, listener := range m.listeners {
		listener.DeviceConnected(deviceID, sessionID)
	}

	m.notifier.Publish(events.Event{
		Type:     events.TypeDeviceConnected,
		DeviceID: deviceID,
		At:       now,
	})

	log.Info().
		Str("device_id", deviceID).
		Str("session_id", sessionID).
		Msg("Device connected")

	return updated, nil
}

// open resolves the owning adapter for a device and opens the connection,
// falling back to probing every adapter when the device was never scanned
// through this manager.
func (m *manager) open(ctx context.Context, deviceID string) (transport.Conn, error) {
	m.mu.Lock()
	owner := m.owner[deviceID]
	m.mu.Unlock()

	if owner != nil {
		return owner.Open(ctx, deviceID)
	}

	var lastErr error = transport.ErrNotFound
	for _, adapter := range m.adapters {
		conn, err := adapter.Open(ctx, deviceID)
		if err == nil {
			m.mu.Lock()
			m.owner[deviceID] = adapter
			m.mu.Unlock()
			return conn, nil
		}

		if !errors.Is(err, transport.ErrNotFound) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// failConnect maps a transport open failure onto the core taxonomy and
// records the resulting device state.
func (m *manager) failConnect(deviceID string, err error) error {
	switch {
	case errors.Is(err, transport.ErrLocked):
		m.registry.Mutate(deviceID, func(d *registry.Device) {
			d.Status = registry.StatusDisconnected
			d.Lock = registry.LockLocked
		})

		log.Info().Str("device_id", deviceID).Msg("Device reported passcode lock on connect")

		return ErrDeviceLocked

	case errors.Is(err, transport.ErrNotFound):
		m.registry.Mutate(deviceID, func(d *registry.Device) {
			d.Status = registry.StatusDisconnected
		})

		return ErrDeviceNotFound

	default:
		m.registry.Mutate(deviceID, func(d *registry.Device) {
			d.Status = registry.StatusDisconnected
		})

		m.notifier.Publish(events.Event{
			Type:     events.TypeDeviceError,
			DeviceID: deviceID,
			Detail:   err.Error(),
			At:       m.clock.Now(),
		})

		return errors.Wrap(ErrTransport, err.Error())
	}
}

func (m *manager) Disconnect(_ context.Context, deviceID string) error {
	if _, ok := m.registry.Get(deviceID); !ok {
		return ErrDeviceNotFound
	}

	m.teardown(deviceID)

	return nil
}

func (m *manager) HandleVanished(_ context.Context, deviceID string) {
	if _, ok := m.registry.Get(deviceID); !ok {
		return
	}

	m.teardown(deviceID)
	m.registry.Remove(deviceID)

	m.mu.Lock()
	delete(m.owner, deviceID)
	m.mu.Unlock()

	log.Info().Str("device_id", deviceID).Msg("Device vanished, removed from registry")
}

// teardown closes the active connection (if any), moves the device to
// disconnected and informs listeners so queued signing requests cancel and
// the in-flight one errors.
func (m *manager) teardown(deviceID string) {
	m.mu.Lock()
	entry, wasConnected := m.active[deviceID]
	delete(m.active, deviceID)
	m.mu.Unlock()

	if wasConnected {
		if err := entry.conn.Close(); err != nil {
			log.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to close transport connection")
		}
	}

	m.registry.Mutate(deviceID, func(d *registry.Device) {
		d.Status = registry.StatusDisconnected
		d.SessionID = ""
		if d.Lock == registry.LockUnlocked {
			d.Lock = registry.LockUnknown
		}
	})

	if !wasConnected {
		return
	}

	for _, listener := range m.listeners {
		listener.DeviceDisconnected(deviceID)
	}

	m.notifier.Publish(events.Event{
		Type:     events.TypeDeviceDisconnected,
		DeviceID: deviceID,
		At:       m.clock.Now(),
	})

	log.Info().Str("device_id", deviceID).Msg("Device disconnected")
}

func (m *manager) Session(deviceID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.active[deviceID]
	if !ok {
		return "", false
	}

	return entry.sessionID, true
}

func (m *manager) Conn(deviceID string) (transport.Conn, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.active[deviceID]
	if !ok {
		return nil, "", false
	}

	return entry.conn, entry.sessionID, true
}

func (m *manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.Disconnect(ctx, id); err != nil {
			log.Warn().Err(err).Str("device_id", id).Msg("Failed to disconnect device on shutdown")
		}
	}
}
