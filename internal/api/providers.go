package api

import (
	"fmt"

	"github.com/dropbox/godropbox/time2"
	"github.com/rs/zerolog/log"

	"github/chapool/hw-bridge/internal/config"
	"github/chapool/hw-bridge/internal/hwwallet"
	"github/chapool/hw-bridge/internal/hwwallet/transport"
	"github/chapool/hw-bridge/internal/hwwallet/transport/transporttest"
	"github/chapool/hw-bridge/internal/metrics"
)

// PROVIDERS - https://github.com/google/wire/blob/main/docs/guide.md#providers

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewClock() time2.Clock {
	return time2.DefaultClock
}

func NewMetrics() *metrics.Service {
	return metrics.New()
}

// NewTransportAdapters builds the transport adapter set. In demo mode a
// scripted adapter serves simulated devices; otherwise the set is empty until
// a hardware transport implementation is linked in.
func NewTransportAdapters(cfg config.Server) []transport.Adapter {
	if !cfg.HW.DemoMode {
		log.Warn().Msg("No hardware transport linked in and demo mode disabled, scans will find no devices")
		return nil
	}

	adapter := transporttest.New()
	for i := 0; i < cfg.HW.DemoDeviceCount; i++ {
		vendor := transport.VendorLedger
		method := transport.MethodUSB
		if i%2 == 1 {
			vendor = transport.VendorTrezor
			method = transport.MethodBluetooth
		}

		adapter.AddDevice(transporttest.NewDevice(fmt.Sprintf("demo-%d", i), vendor, method, 10))
	}

	log.Info().Int("device_count", cfg.HW.DemoDeviceCount).Msg("Demo transport adapter initialized")

	return []transport.Adapter{adapter}
}

func NewHWService(cfg config.Server, adapters []transport.Adapter, clock time2.Clock, metricsService *metrics.Service) *hwwallet.Service {
	return hwwallet.NewService(adapters, clock, metricsService, hwwallet.Config{
		DerivationMaxPage: cfg.HW.DerivationMaxPage,
		EventBufferSize:   cfg.HW.EventBufferSize,
		SigningTimeout:    cfg.HW.SigningTimeout,
		VendorTimeouts:    cfg.HW.VendorTimeouts(),
	})
}
