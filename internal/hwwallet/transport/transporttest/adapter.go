// Package transporttest provides a scripted in-memory transport adapter.
// It backs the test suite and the demo server mode, simulating device
// discovery, lock state, confirmation latency and signing outcomes without
// any physical hardware.
package transporttest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

// Device is one scripted device behind the adapter.
type Device struct {
	Descriptor transport.DeviceDescriptor
	Locked     bool
	Accounts   []transport.AccountDescriptor

	// SignDelay simulates the user taking time to confirm on the device.
	SignDelay time.Duration
	// SignErr, when set, is returned by every Sign call (e.g. ErrRejected).
	SignErr error
	// OpenErr, when set, is returned by Open (e.g. ErrUnavailable).
	OpenErr error
}

// Adapter implements transport.Adapter against scripted devices.
type Adapter struct {
	mu          sync.Mutex
	devices     map[string]*Device
	scanErr     error
	inflight    map[string]int
	maxInflight map[string]int
	signCalls   map[string]int
	listCalls   map[string]int
	signGate    map[string]chan struct{}
	listGate    map[string]chan struct{}
}

// New creates an empty scripted adapter.
func New() *Adapter {
	return &Adapter{
		devices:     make(map[string]*Device),
		inflight:    make(map[string]int),
		maxInflight: make(map[string]int),
		signCalls:   make(map[string]int),
		listCalls:   make(map[string]int),
		signGate:    make(map[string]chan struct{}),
		listGate:    make(map[string]chan struct{}),
	}
}

// NewDevice builds a scripted device with count derived accounts at the
// standard EVM path prefix.
func NewDevice(id string, vendor transport.Vendor, method transport.Method, count int) *Device {
	accounts := make([]transport.AccountDescriptor, 0, count)
	for i := 0; i < count; i++ {
		accounts = append(accounts, transport.AccountDescriptor{
			Address:        DeriveAddress(id, i),
			Index:          i,
			DerivationPath: fmt.Sprintf("m/44'/60'/0'/0/%d", i),
		})
	}

	return &Device{
		Descriptor: transport.DeviceDescriptor{
			ID:              id,
			Vendor:          vendor,
			Model:           string(vendor) + "-sim",
			FirmwareVersion: "1.0.0",
			Method:          method,
			Apps:            []string{"ethereum"},
		},
		Accounts: accounts,
	}
}

// DeriveAddress returns the deterministic simulated address for an account
// index on a device.
func DeriveAddress(deviceID string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s/%d", deviceID, index)))
	return "0x" + hex.EncodeToString(sum[:20])
}

// AddDevice registers a scripted device so subsequent scans observe it.
func (a *Adapter) AddDevice(d *Device) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.devices[d.Descriptor.ID] = d
}

// RemoveDevice makes the device invisible to future scans and opens.
func (a *Adapter) RemoveDevice(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.devices, id)
}

// SetLocked toggles the scripted lock state of a device.
func (a *Adapter) SetLocked(id string, locked bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.devices[id]; ok {
		d.Locked = locked
	}
}

// SetScanErr makes ScanAll fail with the given error.
func (a *Adapter) SetScanErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scanErr = err
}

// HoldSigning blocks every Sign call for the device until the returned
// release function is called. Used to keep a request in flight.
func (a *Adapter) HoldSigning(id string) (release func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	gate := make(chan struct{})
	a.signGate[id] = gate

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.signGate, id)
			a.mu.Unlock()
			close(gate)
		})
	}
}

// HoldListing blocks every ListAccounts call for the device until the
// returned release function is called.
func (a *Adapter) HoldListing(id string) (release func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	gate := make(chan struct{})
	a.listGate[id] = gate

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listGate, id)
			a.mu.Unlock()
			close(gate)
		})
	}
}

// MaxConcurrent reports the highest number of simultaneous device commands
// ever observed for a device. The serialization invariant requires <= 1.
func (a *Adapter) MaxConcurrent(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxInflight[id]
}

// SignCalls reports how many Sign exchanges the device has seen.
func (a *Adapter) SignCalls(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signCalls[id]
}

// ListCalls reports how many ListAccounts exchanges the device has seen.
func (a *Adapter) ListCalls(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listCalls[id]
}

// ScanAll implements transport.Adapter.
func (a *Adapter) ScanAll(_ context.Context) ([]transport.DeviceDescriptor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.scanErr != nil {
		return nil, a.scanErr
	}

	descriptors := make([]transport.DeviceDescriptor, 0, len(a.devices))
	for _, d := range a.devices {
		descriptors = append(descriptors, d.Descriptor)
	}

	return descriptors, nil
}

// Open implements transport.Adapter.
func (a *Adapter) Open(_ context.Context, deviceID string) (transport.Conn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	d, ok := a.devices[deviceID]
	if !ok {
		return nil, transport.ErrNotFound
	}

	if d.OpenErr != nil {
		return nil, d.OpenErr
	}

	if d.Locked {
		return nil, transport.ErrLocked
	}

	return &conn{adapter: a, deviceID: deviceID}, nil
}

type conn struct {
	adapter  *Adapter
	deviceID string

	mu     sync.Mutex
	closed bool
}

func (c *conn) enter() (*Device, func(), error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return nil, nil, transport.ErrUnavailable
	}

	a := c.adapter
	a.mu.Lock()
	defer a.mu.Unlock()

	d, ok := a.devices[c.deviceID]
	if !ok {
		return nil, nil, transport.ErrUnavailable
	}

	a.inflight[c.deviceID]++
	if a.inflight[c.deviceID] > a.maxInflight[c.deviceID] {
		a.maxInflight[c.deviceID] = a.inflight[c.deviceID]
	}

	leave := func() {
		a.mu.Lock()
		a.inflight[c.deviceID]--
		a.mu.Unlock()
	}

	return d, leave, nil
}

// ListAccounts implements transport.Conn.
func (c *conn) ListAccounts(ctx context.Context, pathRange transport.PathRange) ([]transport.AccountDescriptor, error) {
	d, leave, err := c.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	c.adapter.mu.Lock()
	c.adapter.listCalls[c.deviceID]++
	gate := c.adapter.listGate[c.deviceID]
	c.adapter.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accounts := make([]transport.AccountDescriptor, 0, pathRange.Count)
	for _, acc := range d.Accounts {
		if acc.Index >= pathRange.Start && acc.Index < pathRange.Start+pathRange.Count {
			accounts = append(accounts, acc)
		}
	}

	return accounts, nil
}

// Sign implements transport.Conn.
func (c *conn) Sign(ctx context.Context, derivationPath string, payload []byte) ([]byte, error) {
	d, leave, err := c.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	c.adapter.mu.Lock()
	c.adapter.signCalls[c.deviceID]++
	gate := c.adapter.signGate[c.deviceID]
	c.adapter.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if d.SignDelay > 0 {
		select {
		case <-time.After(d.SignDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.SignErr != nil {
		return nil, d.SignErr
	}

	return Signature(c.deviceID, derivationPath, payload), nil
}

// Close implements transport.Conn.
func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Signature is the deterministic simulated signature for a payload, so tests
// can assert exact round-trip results.
func Signature(deviceID, derivationPath string, payload []byte) []byte {
	sum := sha256.Sum256([]byte(deviceID + "|" + derivationPath + "|" + string(payload)))
	return sum[:]
}

// ErrScripted builds a labeled transient error for scan scripting.
func ErrScripted(label string) error {
	return errors.Wrap(transport.ErrUnavailable, label)
}
