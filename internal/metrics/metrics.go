// Package metrics exposes the ambient Prometheus surface served by
// `warden-admin serve` (§6.1, C10): registry occupancy and sweep
// outcomes. The main `warden` binary never imports this package — its
// own process lifetime is one delegate invocation, too short-lived to
// usefully serve /metrics itself, and nothing it does is observed by a
// different process's registry. `warden-admin` is the one long-lived
// process in this tree, so it is the one that both runs reconciliation
// and reports on it.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	regOK atomic.Bool

	sweepReclaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "sweep",
			Name:      "reclaims_total",
			Help:      "Number of registry entries reclaimed by a sweep pass, by reason.",
		}, []string{"reason"},
	)

	registrySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "warden",
			Subsystem: "registry",
			Name:      "entries",
			Help:      "Number of live entries observed in the registry at last snapshot.",
		},
	)
)

// Register registers all collectors with r. Safe to call more than
// once; later calls after a success are no-ops (teacher's
// metrics.Register idempotence pattern).
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{sweepReclaims, registrySize}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the process's registered collectors for warden-admin
// serve's /metrics route.
func Handler() http.Handler { return promhttp.Handler() }

func IncSweepReclaim(reason string) {
	if regOK.Load() {
		sweepReclaims.WithLabelValues(reason).Inc()
	}
}

func SetRegistrySize(n int) {
	if regOK.Load() {
		registrySize.Set(float64(n))
	}
}
