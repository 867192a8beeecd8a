package connection_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/hw-bridge/internal/hwwallet/connection"
	"github/chapool/hw-bridge/internal/hwwallet/events"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
	"github/chapool/hw-bridge/internal/hwwallet/transport/transporttest"
)

type rig struct {
	registry registry.Registry
	adapter  *transporttest.Adapter
	notifier events.Notifier
	manager  connection.Manager
}

func newRig(devices ...*transporttest.Device) *rig {
	reg := registry.New()
	adapter := transporttest.New()
	for _, device := range devices {
		adapter.AddDevice(device)
	}

	notifier := events.New(16)

	return &rig{
		registry: reg,
		adapter:  adapter,
		notifier: notifier,
		manager:  connection.NewManager(reg, []transport.Adapter{adapter}, notifier, time2.DefaultClock),
	}
}

func TestScanMergesDiscoveredDevices(t *testing.T) {
	r := newRig(
		transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2),
		transporttest.NewDevice("dev-2", transport.VendorTrezor, transport.MethodBluetooth, 2),
	)

	devices, err := r.manager.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	for _, device := range devices {
		assert.Equal(t, registry.StatusDisconnected, device.Status)
		assert.Equal(t, registry.LockUnknown, device.Lock)
	}
}

func TestScanKeepsDevicesMissingFromPass(t *testing.T) {
	r := newRig(
		transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2),
		transporttest.NewDevice("dev-2", transport.VendorTrezor, transport.MethodUSB, 2),
	)

	_, err := r.manager.Scan(context.Background())
	require.NoError(t, err)

	// A device disappearing from a later pass stays listed until the transport
	// explicitly reports it vanished.
	r.adapter.RemoveDevice("dev-2")

	devices, err := r.manager.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 2)
}

func TestScanToleratesPartialAdapterFailure(t *testing.T) {
	reg := registry.New()
	healthy := transporttest.New()
	healthy.AddDevice(transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2))
	broken := transporttest.New()
	broken.SetScanErr(transporttest.ErrScripted("usb enumeration failed"))

	manager := connection.NewManager(reg, []transport.Adapter{healthy, broken}, events.New(16), time2.DefaultClock)

	devices, err := manager.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestScanFailsWhenAllAdaptersFail(t *testing.T) {
	r := newRig()
	r.adapter.SetScanErr(transporttest.ErrScripted("usb enumeration failed"))

	_, err := r.manager.Scan(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, connection.ErrTransport))
}

func TestConnectLifecycle(t *testing.T) {
	r := newRig(transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2))
	ctx := context.Background()

	_, err := r.manager.Scan(ctx)
	require.NoError(t, err)

	device, err := r.manager.Connect(ctx, "dev-1")
	require.NoError(t, err)

	assert.Equal(t, registry.StatusConnected, device.Status)
	assert.Equal(t, registry.LockUnlocked, device.Lock)
	assert.NotEmpty(t, device.SessionID)
	assert.False(t, device.LastConnectedAt.IsZero())

	sessionID, ok := r.manager.Session("dev-1")
	require.True(t, ok)
	assert.Equal(t, device.SessionID, sessionID)

	// Connecting an already connected device keeps the session.
	again, err := r.manager.Connect(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, device.SessionID, again.SessionID)

	require.NoError(t, r.manager.Disconnect(ctx, "dev-1"))

	disconnected, ok := r.registry.Get("dev-1")
	require.True(t, ok)
	assert.Equal(t, registry.StatusDisconnected, disconnected.Status)
	assert.Equal(t, registry.LockUnknown, disconnected.Lock)
	assert.Empty(t, disconnected.SessionID)

	_, ok = r.manager.Session("dev-1")
	assert.False(t, ok)

	// Disconnecting a disconnected device is a no-op.
	require.NoError(t, r.manager.Disconnect(ctx, "dev-1"))
}

func TestConnectUnknownDevice(t *testing.T) {
	r := newRig()

	_, err := r.manager.Connect(context.Background(), "ghost")
	assert.True(t, errors.Is(err, connection.ErrDeviceNotFound))
}

func TestConnectLockedDevice(t *testing.T) {
	r := newRig(transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2))
	ctx := context.Background()

	_, err := r.manager.Scan(ctx)
	require.NoError(t, err)

	r.adapter.SetLocked("dev-1", true)

	_, err = r.manager.Connect(ctx, "dev-1")
	assert.True(t, errors.Is(err, connection.ErrDeviceLocked))

	device, ok := r.registry.Get("dev-1")
	require.True(t, ok)
	assert.Equal(t, registry.StatusDisconnected, device.Status)
	assert.Equal(t, registry.LockLocked, device.Lock)

	// Unlocking on the device makes the retry succeed.
	r.adapter.SetLocked("dev-1", false)

	device, err = r.manager.Connect(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, registry.LockUnlocked, device.Lock)
}

func TestConnectTransportFailure(t *testing.T) {
	device := transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2)
	device.OpenErr = transport.ErrUnavailable
	r := newRig(device)
	ctx := context.Background()

	_, err := r.manager.Scan(ctx)
	require.NoError(t, err)

	eventCh, unsubscribe := r.notifier.Subscribe()
	defer unsubscribe()

	_, err = r.manager.Connect(ctx, "dev-1")
	assert.True(t, errors.Is(err, connection.ErrTransport))

	snapshot, ok := r.registry.Get("dev-1")
	require.True(t, ok)
	assert.Equal(t, registry.StatusDisconnected, snapshot.Status)

	event := <-eventCh
	assert.Equal(t, "dev-1", event.DeviceID)
	assert.NotEmpty(t, event.Detail)
}

// gatedOpenAdapter delays Open until the gate closes, keeping a device in the
// connecting state.
type gatedOpenAdapter struct {
	*transporttest.Adapter
	gate chan struct{}
}

func (a *gatedOpenAdapter) Open(ctx context.Context, deviceID string) (transport.Conn, error) {
	select {
	case <-a.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return a.Adapter.Open(ctx, deviceID)
}

func TestConnectWhileConnecting(t *testing.T) {
	inner := transporttest.New()
	inner.AddDevice(transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2))
	adapter := &gatedOpenAdapter{Adapter: inner, gate: make(chan struct{})}

	reg := registry.New()
	manager := connection.NewManager(reg, []transport.Adapter{adapter}, events.New(16), time2.DefaultClock)
	ctx := context.Background()

	_, err := manager.Scan(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := manager.Connect(ctx, "dev-1")
		done <- err
	}()

	require.Eventually(t, func() bool {
		device, ok := reg.Get("dev-1")
		return ok && device.Status == registry.StatusConnecting
	}, time.Second, 5*time.Millisecond)

	_, err = manager.Connect(ctx, "dev-1")
	assert.True(t, errors.Is(err, connection.ErrAlreadyConnecting))

	close(adapter.gate)
	require.NoError(t, <-done)
}

func TestVanishWhileConnecting(t *testing.T) {
	inner := transporttest.New()
	inner.AddDevice(transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2))
	adapter := &gatedOpenAdapter{Adapter: inner, gate: make(chan struct{})}

	reg := registry.New()
	manager := connection.NewManager(reg, []transport.Adapter{adapter}, events.New(16), time2.DefaultClock)
	ctx := context.Background()

	_, err := manager.Scan(ctx)
	require.NoError(t, err)

	type result struct {
		device *registry.Device
		err    error
	}

	done := make(chan result, 1)
	go func() {
		device, err := manager.Connect(ctx, "dev-1")
		done <- result{device: device, err: err}
	}()

	require.Eventually(t, func() bool {
		device, ok := reg.Get("dev-1")
		return ok && device.Status == registry.StatusConnecting
	}, time.Second, 5*time.Millisecond)

	// The device vanishes while the transport open is still blocked on user
	// interaction, then the open completes.
	manager.HandleVanished(ctx, "dev-1")
	close(adapter.gate)

	res := <-done
	assert.Nil(t, res.device)
	assert.True(t, errors.Is(res.err, connection.ErrDeviceNotFound))

	_, ok := reg.Get("dev-1")
	assert.False(t, ok)
	_, ok = manager.Session("dev-1")
	assert.False(t, ok)

	// The device coming back on a later scan connects cleanly.
	_, err = manager.Scan(ctx)
	require.NoError(t, err)

	device, err := manager.Connect(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, registry.StatusConnected, device.Status)
}

func TestHandleVanished(t *testing.T) {
	r := newRig(transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2))
	ctx := context.Background()

	_, err := r.manager.Scan(ctx)
	require.NoError(t, err)
	_, err = r.manager.Connect(ctx, "dev-1")
	require.NoError(t, err)

	eventCh, unsubscribe := r.notifier.Subscribe()
	defer unsubscribe()

	r.manager.HandleVanished(ctx, "dev-1")

	_, ok := r.registry.Get("dev-1")
	assert.False(t, ok)

	event := <-eventCh
	assert.Equal(t, events.TypeDeviceDisconnected, event.Type)
	assert.Equal(t, "dev-1", event.DeviceID)

	// A duplicate vanish signal for the same device is a no-op.
	r.manager.HandleVanished(ctx, "dev-1")
}

func TestShutdownDisconnectsAll(t *testing.T) {
	r := newRig(
		transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 2),
		transporttest.NewDevice("dev-2", transport.VendorTrezor, transport.MethodUSB, 2),
	)
	ctx := context.Background()

	_, err := r.manager.Scan(ctx)
	require.NoError(t, err)

	for _, id := range []string{"dev-1", "dev-2"} {
		_, err = r.manager.Connect(ctx, id)
		require.NoError(t, err)
	}

	r.manager.Shutdown(ctx)

	for _, id := range []string{"dev-1", "dev-2"} {
		device, ok := r.registry.Get(id)
		require.True(t, ok)
		assert.Equal(t, registry.StatusDisconnected, device.Status)
	}
}
