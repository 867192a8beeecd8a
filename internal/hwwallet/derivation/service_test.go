package derivation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/hw-bridge/internal/hwwallet/connection"
	"github/chapool/hw-bridge/internal/hwwallet/derivation"
	"github/chapool/hw-bridge/internal/hwwallet/events"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
	"github/chapool/hw-bridge/internal/hwwallet/transport/transporttest"
)

type rig struct {
	adapter  *transporttest.Adapter
	manager  connection.Manager
	accounts derivation.Service
}

func newRig(maxPageSize int, devices ...*transporttest.Device) *rig {
	reg := registry.New()
	adapter := transporttest.New()
	for _, device := range devices {
		adapter.AddDevice(device)
	}

	manager := connection.NewManager(reg, []transport.Adapter{adapter}, events.New(16), time2.DefaultClock)

	return &rig{
		adapter:  adapter,
		manager:  manager,
		accounts: derivation.NewService(reg, manager, maxPageSize),
	}
}

func (r *rig) connect(t *testing.T, deviceID string) {
	t.Helper()

	ctx := context.Background()
	_, err := r.manager.Scan(ctx)
	require.NoError(t, err)
	_, err = r.manager.Connect(ctx, deviceID)
	require.NoError(t, err)
}

func TestLoadAccountsRejectsInvalidRanges(t *testing.T) {
	r := newRig(10, transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 10))
	r.connect(t, "dev-1")
	ctx := context.Background()

	for _, pathRange := range []transport.PathRange{
		{Start: 0, Count: 0},
		{Start: -1, Count: 5},
		{Start: 0, Count: 11},
	} {
		_, err := r.accounts.LoadAccounts(ctx, "dev-1", pathRange)
		assert.True(t, errors.Is(err, derivation.ErrInvalidRange), "range %+v", pathRange)
	}
}

func TestLoadAccountsRequiresReadyDevice(t *testing.T) {
	r := newRig(10, transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 10))
	ctx := context.Background()

	_, err := r.accounts.LoadAccounts(ctx, "ghost", transport.PathRange{Start: 0, Count: 5})
	assert.True(t, errors.Is(err, connection.ErrDeviceNotFound))

	// Known but never connected.
	_, err = r.manager.Scan(ctx)
	require.NoError(t, err)
	_, err = r.accounts.LoadAccounts(ctx, "dev-1", transport.PathRange{Start: 0, Count: 5})
	assert.True(t, errors.Is(err, connection.ErrDeviceNotReady))
}

func TestLoadAccountsDerivesAndCaches(t *testing.T) {
	r := newRig(10, transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 10))
	r.connect(t, "dev-1")
	ctx := context.Background()

	accounts, err := r.accounts.LoadAccounts(ctx, "dev-1", transport.PathRange{Start: 0, Count: 5})
	require.NoError(t, err)
	require.Len(t, accounts, 5)

	for i, account := range accounts {
		assert.Equal(t, transporttest.DeriveAddress("dev-1", i), account.Address)
		assert.Equal(t, i, account.Index)
		assert.Equal(t, "dev-1", account.DeviceID)
		assert.NotEmpty(t, account.SessionID)
	}

	assert.Equal(t, 1, r.adapter.ListCalls("dev-1"))

	// The same page within the same session is served from the cache.
	cached, err := r.accounts.LoadAccounts(ctx, "dev-1", transport.PathRange{Start: 0, Count: 5})
	require.NoError(t, err)
	assert.Equal(t, accounts, cached)
	assert.Equal(t, 1, r.adapter.ListCalls("dev-1"))

	// A different page still reaches the device.
	_, err = r.accounts.LoadAccounts(ctx, "dev-1", transport.PathRange{Start: 5, Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, r.adapter.ListCalls("dev-1"))
}

func TestLookupScopedToSession(t *testing.T) {
	r := newRig(10, transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 10))
	r.connect(t, "dev-1")
	ctx := context.Background()

	accounts, err := r.accounts.LoadAccounts(ctx, "dev-1", transport.PathRange{Start: 0, Count: 3})
	require.NoError(t, err)

	sessionID := accounts[0].SessionID

	account, ok := r.accounts.Lookup("dev-1", sessionID, accounts[1].DerivationPath)
	require.True(t, ok)
	assert.Equal(t, accounts[1].Address, account.Address)

	_, ok = r.accounts.Lookup("dev-1", "other-session", accounts[1].DerivationPath)
	assert.False(t, ok)

	_, ok = r.accounts.Lookup("dev-1", sessionID, "m/44'/60'/0'/0/99")
	assert.False(t, ok)
}

func TestCacheInvalidatedByReconnect(t *testing.T) {
	r := newRig(10, transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 10))
	r.connect(t, "dev-1")
	ctx := context.Background()

	first, err := r.accounts.LoadAccounts(ctx, "dev-1", transport.PathRange{Start: 0, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, r.adapter.ListCalls("dev-1"))

	require.NoError(t, r.manager.Disconnect(ctx, "dev-1"))

	// The old session's cache must be gone once a new session starts.
	_, ok := r.accounts.Lookup("dev-1", first[0].SessionID, first[0].DerivationPath)
	assert.False(t, ok)

	_, err = r.manager.Connect(ctx, "dev-1")
	require.NoError(t, err)

	second, err := r.accounts.LoadAccounts(ctx, "dev-1", transport.PathRange{Start: 0, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, r.adapter.ListCalls("dev-1"))
	assert.NotEqual(t, first[0].SessionID, second[0].SessionID)
}

func TestConcurrentLoadsShareOneDeviceExchange(t *testing.T) {
	r := newRig(10, transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 10))
	r.connect(t, "dev-1")
	ctx := context.Background()

	// Hold the device exchange open so every concurrent caller arrives while
	// the first one is still in flight.
	release := r.adapter.HoldListing("dev-1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			accounts, err := r.accounts.LoadAccounts(ctx, "dev-1", transport.PathRange{Start: 0, Count: 5})
			assert.NoError(t, err)
			assert.Len(t, accounts, 5)
		}()
	}

	require.Eventually(t, func() bool {
		return r.adapter.ListCalls("dev-1") == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	release()
	wg.Wait()

	assert.Equal(t, 1, r.adapter.ListCalls("dev-1"))
	assert.LessOrEqual(t, r.adapter.MaxConcurrent("dev-1"), 1)
}

func TestSharedLoadSurvivesFirstCallerCancellation(t *testing.T) {
	r := newRig(10, transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 10))
	r.connect(t, "dev-1")

	release := r.adapter.HoldListing("dev-1")

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := r.accounts.LoadAccounts(firstCtx, "dev-1", transport.PathRange{Start: 0, Count: 5})
		firstDone <- err
	}()

	require.Eventually(t, func() bool {
		return r.adapter.ListCalls("dev-1") == 1
	}, time.Second, 5*time.Millisecond)

	var shared []*derivation.Account
	secondDone := make(chan error, 1)
	go func() {
		accounts, err := r.accounts.LoadAccounts(context.Background(), "dev-1", transport.PathRange{Start: 0, Count: 5})
		shared = accounts
		secondDone <- err
	}()

	// Let the second caller join the in-flight exchange, then cancel the
	// first caller's request while the device is still busy.
	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	time.Sleep(50 * time.Millisecond)
	release()

	require.NoError(t, <-secondDone)
	require.Len(t, shared, 5)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, r.adapter.ListCalls("dev-1"))
}

func TestMalformedAddressFromDevice(t *testing.T) {
	device := transporttest.NewDevice("dev-1", transport.VendorLedger, transport.MethodUSB, 0)
	device.Accounts = []transport.AccountDescriptor{
		{Address: "not-an-address", Index: 0, DerivationPath: "m/44'/60'/0'/0/0"},
	}
	r := newRig(10, device)
	r.connect(t, "dev-1")

	_, err := r.accounts.LoadAccounts(context.Background(), "dev-1", transport.PathRange{Start: 0, Count: 1})
	assert.True(t, errors.Is(err, connection.ErrTransport))
}
