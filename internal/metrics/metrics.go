package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service holds the prometheus collectors for the bridge. Each service
// instance owns its registry so test servers never collide on registration.
type Service struct {
	registry *prometheus.Registry

	devicesConnected prometheus.Gauge
	scansTotal       prometheus.Counter
	signingSubmitted prometheus.Counter
	signingFinished  *prometheus.CounterVec
}

// New creates the metrics service with a fresh registry.
func New() *Service {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Service{
		registry: registry,
		devicesConnected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hwbridge",
			Name:      "devices_connected",
			Help:      "Number of hardware devices currently connected.",
		}),
		scansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hwbridge",
			Name:      "transport_scans_total",
			Help:      "Number of transport scans performed.",
		}),
		signingSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hwbridge",
			Name:      "signing_requests_submitted_total",
			Help:      "Number of signing requests accepted for dispatch.",
		}),
		signingFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hwbridge",
			Name:      "signing_requests_finished_total",
			Help:      "Number of signing requests that reached a terminal state.",
		}, []string{"outcome"}),
	}
}

// Registry exposes the underlying registry for the HTTP handler and the echo
// middleware.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) DeviceConnected()    { s.devicesConnected.Inc() }
func (s *Service) DeviceDisconnected() { s.devicesConnected.Dec() }
func (s *Service) ScanPerformed()      { s.scansTotal.Inc() }
func (s *Service) SigningSubmitted()   { s.signingSubmitted.Inc() }

// SigningFinished records a terminal signing outcome ("signed" or a failure
// reason).
func (s *Service) SigningFinished(outcome string) {
	s.signingFinished.WithLabelValues(outcome).Inc()
}
