package config

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github/chapool/hw-bridge/internal/hwwallet/transport"
)

// EchoServer configures the HTTP layer.
type EchoServer struct {
	ListenAddress                  string
	HideInternalServerErrorDetails bool
	EnableRecoverMiddleware        bool
	EnableLoggerMiddleware         bool
	EnableMetricsMiddleware        bool
}

// LoggerServer configures zerolog.
type LoggerServer struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
}

// HWServer configures the hardware-wallet core.
type HWServer struct {
	// DemoMode serves scripted simulated devices instead of real transports.
	DemoMode        bool
	DemoDeviceCount int

	DerivationMaxPage int
	EventBufferSize   int

	SigningTimeout         time.Duration
	SigningTimeoutLedger   time.Duration
	SigningTimeoutTrezor   time.Duration
	SigningTimeoutGridPlus time.Duration

	TrimHistoryAfter time.Duration
}

// VendorTimeouts maps the per-vendor overrides into the form the signing
// orchestrator consumes. Zero values mean "use the default budget".
func (h HWServer) VendorTimeouts() map[transport.Vendor]time.Duration {
	timeouts := make(map[transport.Vendor]time.Duration)
	if h.SigningTimeoutLedger > 0 {
		timeouts[transport.VendorLedger] = h.SigningTimeoutLedger
	}
	if h.SigningTimeoutTrezor > 0 {
		timeouts[transport.VendorTrezor] = h.SigningTimeoutTrezor
	}
	if h.SigningTimeoutGridPlus > 0 {
		timeouts[transport.VendorGridPlus] = h.SigningTimeoutGridPlus
	}

	return timeouts
}

// Server is the full service configuration, resolved from the environment.
type Server struct {
	Echo   EchoServer
	Logger LoggerServer
	HW     HWServer
}

var (
	configOnce sync.Once
	config     Server
)

// DefaultServiceConfigFromEnv resolves the service configuration from ENV
// (with `.env` support for local development). The result is cached for the
// process lifetime.
func DefaultServiceConfigFromEnv() Server {
	configOnce.Do(func() {
		// Lowest precedence, never overrides real ENV.
		_ = gotenv.Load()

		v := viper.New()
		v.SetEnvPrefix("SERVER")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		v.SetDefault("echo.listen_address", ":8080")
		v.SetDefault("echo.hide_internal_server_error_details", true)
		v.SetDefault("echo.enable_recover_middleware", true)
		v.SetDefault("echo.enable_logger_middleware", true)
		v.SetDefault("echo.enable_metrics_middleware", true)

		v.SetDefault("logger.level", "info")
		v.SetDefault("logger.pretty_print_console", false)

		v.SetDefault("hw.demo_mode", false)
		v.SetDefault("hw.demo_device_count", 2)
		v.SetDefault("hw.derivation_max_page", 100)
		v.SetDefault("hw.event_buffer_size", 64)
		v.SetDefault("hw.signing_timeout", "45s")
		v.SetDefault("hw.signing_timeout_ledger", "0s")
		v.SetDefault("hw.signing_timeout_trezor", "0s")
		v.SetDefault("hw.signing_timeout_gridplus", "0s")
		v.SetDefault("hw.trim_history_after", "24h")

		level, err := zerolog.ParseLevel(v.GetString("logger.level"))
		if err != nil {
			level = zerolog.InfoLevel
		}

		config = Server{
			Echo: EchoServer{
				ListenAddress:                  v.GetString("echo.listen_address"),
				HideInternalServerErrorDetails: v.GetBool("echo.hide_internal_server_error_details"),
				EnableRecoverMiddleware:        v.GetBool("echo.enable_recover_middleware"),
				EnableLoggerMiddleware:         v.GetBool("echo.enable_logger_middleware"),
				EnableMetricsMiddleware:        v.GetBool("echo.enable_metrics_middleware"),
			},
			Logger: LoggerServer{
				Level:              level,
				PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
			},
			HW: HWServer{
				DemoMode:               v.GetBool("hw.demo_mode"),
				DemoDeviceCount:        v.GetInt("hw.demo_device_count"),
				DerivationMaxPage:      v.GetInt("hw.derivation_max_page"),
				EventBufferSize:        v.GetInt("hw.event_buffer_size"),
				SigningTimeout:         v.GetDuration("hw.signing_timeout"),
				SigningTimeoutLedger:   v.GetDuration("hw.signing_timeout_ledger"),
				SigningTimeoutTrezor:   v.GetDuration("hw.signing_timeout_trezor"),
				SigningTimeoutGridPlus: v.GetDuration("hw.signing_timeout_gridplus"),
				TrimHistoryAfter:       v.GetDuration("hw.trim_history_after"),
			},
		}
	})

	return config
}
