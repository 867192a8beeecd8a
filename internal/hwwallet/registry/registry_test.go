package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

func TestUpsertNewDeviceDefaults(t *testing.T) {
	reg := registry.New()

	device := reg.Upsert(registry.Descriptor{
		ID:     "dev-1",
		Vendor: transport.VendorLedger,
		Model:  "nano-x",
		Method: transport.MethodUSB,
	})

	assert.Equal(t, "dev-1", device.ID)
	assert.Equal(t, registry.StatusDisconnected, device.Status)
	assert.Equal(t, registry.LockUnknown, device.Lock)
	assert.Empty(t, device.SessionID)
	assert.True(t, device.LastConnectedAt.IsZero())
}

func TestUpsertMergesWithoutDroppingKnownFields(t *testing.T) {
	reg := registry.New()

	reg.Upsert(registry.Descriptor{
		ID:              "dev-1",
		Vendor:          transport.VendorTrezor,
		Model:           "model-t",
		FirmwareVersion: "2.6.0",
		Method:          transport.MethodBluetooth,
		Apps:            []string{"ethereum"},
	})

	// A later pass may observe the device with a sparser descriptor.
	device := reg.Upsert(registry.Descriptor{ID: "dev-1"})

	assert.Equal(t, transport.VendorTrezor, device.Vendor)
	assert.Equal(t, "model-t", device.Model)
	assert.Equal(t, "2.6.0", device.FirmwareVersion)
	assert.Equal(t, transport.MethodBluetooth, device.Method)
	assert.Equal(t, []string{"ethereum"}, device.Apps)

	// Richer descriptors update in place.
	device = reg.Upsert(registry.Descriptor{ID: "dev-1", FirmwareVersion: "2.7.0"})
	assert.Equal(t, "2.7.0", device.FirmwareVersion)
	assert.Equal(t, "model-t", device.Model)
}

func TestUpsertKeepsConnectionState(t *testing.T) {
	reg := registry.New()
	reg.Upsert(registry.Descriptor{ID: "dev-1", Vendor: transport.VendorLedger})

	_, ok := reg.Mutate("dev-1", func(d *registry.Device) {
		d.Status = registry.StatusConnected
		d.Lock = registry.LockUnlocked
		d.SessionID = "session-1"
	})
	require.True(t, ok)

	device := reg.Upsert(registry.Descriptor{ID: "dev-1", Model: "nano-s"})

	assert.Equal(t, registry.StatusConnected, device.Status)
	assert.Equal(t, registry.LockUnlocked, device.Lock)
	assert.Equal(t, "session-1", device.SessionID)
}

func TestGetReturnsSnapshot(t *testing.T) {
	reg := registry.New()
	reg.Upsert(registry.Descriptor{ID: "dev-1", Apps: []string{"ethereum"}})

	device, ok := reg.Get("dev-1")
	require.True(t, ok)

	// Mutating the snapshot must not leak into the registry.
	device.Status = registry.StatusConnected
	device.Apps[0] = "bitcoin"

	fresh, ok := reg.Get("dev-1")
	require.True(t, ok)
	assert.Equal(t, registry.StatusDisconnected, fresh.Status)
	assert.Equal(t, []string{"ethereum"}, fresh.Apps)
}

func TestRemoveIsIdempotent(t *testing.T) {
	reg := registry.New()
	reg.Upsert(registry.Descriptor{ID: "dev-1"})

	reg.Remove("dev-1")
	reg.Remove("dev-1")

	_, ok := reg.Get("dev-1")
	assert.False(t, ok)
	assert.Empty(t, reg.List())
}

func TestMutateUnknownDevice(t *testing.T) {
	reg := registry.New()

	device, ok := reg.Mutate("nope", func(d *registry.Device) {
		d.Status = registry.StatusConnected
	})

	assert.False(t, ok)
	assert.Nil(t, device)
}

func TestDeviceReady(t *testing.T) {
	device := &registry.Device{Status: registry.StatusConnected, Lock: registry.LockUnlocked}
	assert.True(t, device.Ready())

	device.Lock = registry.LockLocked
	assert.False(t, device.Ready())

	device.Lock = registry.LockUnlocked
	device.Status = registry.StatusConnecting
	assert.False(t, device.Ready())
}

func TestConcurrentUpsertAndList(t *testing.T) {
	reg := registry.New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				reg.Upsert(registry.Descriptor{ID: fmt.Sprintf("dev-%d", i%4)})
				reg.List()
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, reg.List(), 4)
}
