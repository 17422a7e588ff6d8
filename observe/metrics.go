package observe

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa os coletores do gateway. Registrados por NewMetrics, sem
// estado global, para que os testes usem um registry próprio.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	LocaleDecisions   *prometheus.CounterVec
	ContactRejected   prometheus.Counter
	ConcurrencyReject prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meteo_gateway_requests_total",
			Help: "The total number of requests served by the gateway",
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meteo_gateway_request_duration_seconds",
			Help:    "The histogram of request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		LocaleDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meteo_gateway_locale_decisions_total",
			Help: "Locale resolutions by action and locale",
		}, []string{"action", "locale"}),
		ContactRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meteo_gateway_contact_rate_limited_total",
			Help: "Contact form submissions rejected by the rate limiter",
		}),
		ConcurrencyReject: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meteo_gateway_concurrency_rejected_total",
			Help: "Requests rejected because the in-flight cap was reached",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.LocaleDecisions,
		m.ContactRejected,
		m.ConcurrencyReject,
	)
	return m
}

const decimalBase = 10

// WithMetrics conta requests por método e status. O path fica fora dos labels
// por causa da cardinalidade (cidades no path).
func (m *Metrics) WithMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			timer := prometheus.NewTimer(m.RequestDuration.WithLabelValues(r.Method))
			defer func() {
				timer.ObserveDuration()
				m.RequestsTotal.WithLabelValues(
					r.Method,
					strconv.FormatInt(int64(sw.Code), decimalBase),
				).Inc()
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
