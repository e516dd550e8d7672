// internal/writer/metrics/exporter.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tamzrod/bms-poller/internal/status"
	"github.com/tamzrod/bms-poller/internal/writer"
)

// Exporter keeps the latest values of every device as Prometheus gauges.
type Exporter struct {
	reg *prometheus.Registry

	values         *prometheus.GaugeVec
	health         *prometheus.GaugeVec
	lastErrorCode  *prometheus.GaugeVec
	secondsInError *prometheus.GaugeVec
	polls          *prometheus.CounterVec

	srv *http.Server
	log zerolog.Logger
}

// New creates an exporter with its own registry.
func New(log zerolog.Logger) *Exporter {
	e := &Exporter{
		reg: prometheus.NewRegistry(),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_value",
			Help: "Latest decoded device value, labelled by flattened field name and unit",
		}, []string{"device", "type", "name", "unit"}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_device_health",
			Help: "Device health (0 unknown, 1 ok, 2 error, 3 stale)",
		}, []string{"device"}),
		lastErrorCode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_device_last_error_code",
			Help: "Last Modbus exception code (1 generic, 0 none)",
		}, []string{"device"}),
		secondsInError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_device_seconds_in_error",
			Help: "Seconds the device has been in a non-ok state",
		}, []string{"device"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bms_polls_total",
			Help: "Poll cycles by outcome",
		}, []string{"device", "result"}),
		log: log,
	}

	e.reg.MustRegister(e.values, e.health, e.lastErrorCode, e.secondsInError, e.polls)
	return e
}

// Registry exposes the registry for tests and extra collectors.
func (e *Exporter) Registry() *prometheus.Registry { return e.reg }

// Handler serves the registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{})
}

// Serve starts the /metrics listener in the background.
func (e *Exporter) Serve(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	e.srv = &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		e.log.Info().Str("listen", listen).Msg("metrics listening")
		if err := e.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error().Err(err).Msg("metrics listener stopped")
		}
	}()
}

func (e *Exporter) Name() string { return "metrics" }

func (e *Exporter) Write(rec writer.Record) error {
	for _, v := range rec.Values {
		e.values.WithLabelValues(rec.Device, rec.Type, v.Name, v.Unit).Set(v.Value)
	}

	result := "ok"
	switch {
	case rec.Err != nil && rec.Health.Health == status.HealthStale:
		result = "partial"
	case rec.Err != nil:
		result = "error"
	}
	e.polls.WithLabelValues(rec.Device, result).Inc()
	return nil
}

func (e *Exporter) WriteStatus(device string, s status.Snapshot) error {
	e.health.WithLabelValues(device).Set(float64(s.Health))
	e.lastErrorCode.WithLabelValues(device).Set(float64(s.LastErrorCode))
	e.secondsInError.WithLabelValues(device).Set(float64(s.SecondsInError))
	return nil
}

// Close stops the listener if Serve was called.
func (e *Exporter) Close() error {
	if e.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return e.srv.Shutdown(ctx)
}
