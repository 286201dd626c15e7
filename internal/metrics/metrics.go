// Package metrics agrupa las métricas Prometheus del servicio.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/tokend/internal/token"
)

// Resultados de un token request además de los códigos de error OAuth2.
const (
	ResultSuccess            = "success"
	ResultConfigurationError = "configuration_error"
	ResultCanceled           = "canceled"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	tokenRequests    *prometheus.CounterVec
	tokenDuration    *prometheus.HistogramVec
	tokenTransitions *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge
}

// New registra las métricas en un registry propio (con collectors de Go y
// proceso), así los tests pueden crear tantas instancias como quieran.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	return NewWith(reg, reg)
}

// NewWith registra sobre reg y expone lo que junte g.
func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		gatherer: g,
		tokenRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokend_token_requests_total",
			Help: "Token requests por grant type y resultado",
		}, []string{"grant_type", "result"}), // result: success | <oauth2 error> | configuration_error | canceled
		tokenDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tokend_token_request_duration_seconds",
			Help:    "Latencia del pipeline del token endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"grant_type"}),
		tokenTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokend_token_state_transitions_total",
			Help: "Transiciones del pipeline por estado destino",
		}, []string{"state"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.tokenRequests, m.tokenDuration, m.tokenTransitions,
		m.httpRequests, m.httpDuration, m.httpInflight,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
		}
	}
	return m, nil
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveToken registra el resultado de un token request.
func (m *Metrics) ObserveToken(grantType, result string, d time.Duration) {
	m.tokenRequests.WithLabelValues(grantType, result).Inc()
	m.tokenDuration.WithLabelValues(grantType).Observe(d.Seconds())
}

// Transition implementa token.Observer.
func (m *Metrics) Transition(_ context.Context, _ string, _, to token.State) {
	m.tokenTransitions.WithLabelValues(string(to)).Inc()
}

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, path, httpStatus(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) InflightInc() { m.httpInflight.Inc() }

func (m *Metrics) InflightDec() { m.httpInflight.Dec() }

func httpStatus(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code)
}

var _ token.Observer = (*Metrics)(nil)
