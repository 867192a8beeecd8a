package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/api/router"
	"github/chapool/hw-bridge/internal/config"
	"github/chapool/hw-bridge/internal/hwwallet"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
	"github/chapool/hw-bridge/internal/hwwallet/transport/transporttest"
	"github/chapool/hw-bridge/internal/metrics"
)

// WithTestServer returns a fully initialized server with the demo transport
// (two scripted devices) for straightforward handler tests.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.HW.DemoMode = true
	cfg.HW.DemoDeviceCount = 2

	WithTestServerConfigurable(t, cfg, closure)
}

// WithTestServerConfigurable returns a fully initialized server for the given
// config.
func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	s, err := api.InitNewServer(cfg)
	require.NoError(t, err)

	execClosureNewTestServer(t, s, closure)
}

// WithTestServerAdapter returns a fully initialized server backed by the
// given scripted transport adapter, for tests that need to manipulate device
// behavior (locks, signing holds, transport failures) mid-request.
func WithTestServerAdapter(t *testing.T, adapter *transporttest.Adapter, closure func(s *api.Server)) {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()

	s := api.NewServer(cfg)
	s.Clock = api.NewClock()
	s.Metrics = metrics.New()
	s.HW = api.NewHWService(cfg, []transport.Adapter{adapter}, s.Clock, s.Metrics)

	execClosureNewTestServer(t, s, closure)
}

func execClosureNewTestServer(t *testing.T, s *api.Server, closure func(s *api.Server)) {
	t.Helper()

	router.Init(s)

	t.Cleanup(func() {
		for _, err := range s.Shutdown(context.Background()) {
			t.Logf("failed to shutdown server: %v", err)
		}
	})

	closure(s)
}

// ScanAndConnect is a shorthand for tests that need a ready device: it scans
// all transports and connects the given device.
func ScanAndConnect(t *testing.T, s *api.Server, deviceID string) *hwwallet.Device {
	t.Helper()

	ctx := context.Background()

	_, err := s.HW.Scan(ctx)
	require.NoError(t, err)

	device, err := s.HW.Connect(ctx, deviceID)
	require.NoError(t, err)

	return device
}
