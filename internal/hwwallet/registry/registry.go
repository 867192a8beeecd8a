package registry

import "sync"

// Registry holds the set of discovered devices and their last-known status.
// It is safe for concurrent reads while a scan merges new descriptors in.
type Registry interface {
	// Upsert merges a freshly observed descriptor into the registry. Fields
	// the descriptor does not provide keep their previously known values.
	Upsert(descriptor Descriptor) *Device

	// Remove deletes a device entry. Idempotent; only called on an explicit
	// "device vanished" transport signal, never because a scan missed it.
	Remove(id string)

	// List returns a snapshot copy of all known devices.
	List() []*Device

	// Get returns a snapshot copy of one device.
	Get(id string) (*Device, bool)

	// Mutate applies fn to the live entry under the registry lock and
	// returns the updated snapshot. Reserved for the connection manager; no
	// other component may write device status.
	Mutate(id string, fn func(*Device)) (*Device, bool)
}

// registry implements Registry with an RWMutex-guarded in-memory map.
type registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// New creates an empty device registry.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func New() Registry {
	return &registry{
		devices: make(map[string]*Device),
	}
}

func (r *registry) Upsert(descriptor Descriptor) *Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[descriptor.ID]
	if !ok {
		device = &Device{
			ID:     descriptor.ID,
			Status: StatusDisconnected,
			Lock:   LockUnknown,
		}
		r.devices[descriptor.ID] = device
	}

	// Merge without dropping known fields the new descriptor omits.
	if descriptor.Vendor != "" {
		device.Vendor = descriptor.Vendor
	}
	if descriptor.Model != "" {
		device.Model = descriptor.Model
	}
	if descriptor.FirmwareVersion != "" {
		device.FirmwareVersion = descriptor.FirmwareVersion
	}
	if descriptor.Method != "" {
		device.Method = descriptor.Method
	}
	if len(descriptor.Apps) > 0 {
		device.Apps = append([]string(nil), descriptor.Apps...)
	}

	return device.clone()
}

func (r *registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.devices, id)
}

func (r *registry) List() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]*Device, 0, len(r.devices))
	for _, device := range r.devices {
		devices = append(devices, device.clone())
	}

	return devices
}

func (r *registry) Get(id string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[id]
	if !ok {
		return nil, false
	}

	return device.clone(), true
}

func (r *registry) Mutate(id string, fn func(*Device)) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[id]
	if !ok {
		return nil, false
	}

	fn(device)

	return device.clone(), true
}
