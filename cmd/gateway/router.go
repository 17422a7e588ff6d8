package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"meteo-gateway/middleware/locale"
	"meteo-gateway/middleware/ratelimit"
	"meteo-gateway/middleware/ratelimit/domain"
	"meteo-gateway/observe"

	"github.com/go-chi/chi/v5"
	"github.com/hellofresh/health-go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type routerDeps struct {
	cfg      *config
	upstream http.Handler
	limiter  domain.WindowLimiter
	stats    domain.StatsStore
	weather  http.Handler
	metrics  *observe.Metrics
}

func newUpstreamProxy(target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.WithError(err).WithFields(log.Fields{
			"path":       r.URL.Path,
			"request_id": observe.RequestID(r.Context()),
		}).Error("proxy error")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}
	return proxy
}

// newRouter monta o handler público: locale em tudo que não é excluído,
// rate limit só no POST do formulário de contato, relay de clima e o resto
// vai para o renderizador.
func newRouter(d routerDeps) http.Handler {
	cfg := d.cfg

	r := chi.NewRouter()
	r.Use(
		observe.WithRequestID(),
		observe.WithLogging(nil),
		d.metrics.WithMetrics(),
		ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            cfg.Concurrency.Max,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.Concurrency.Timeout,
			OnReject:       func(*http.Request) { d.metrics.ConcurrencyReject.Inc() },
		}),
		locale.Middleware(locale.Options{
			Matcher: locale.NewMatcher(cfg.site.exclusions()...),
			OnDecision: func(_ *http.Request, dec locale.Decision) {
				d.metrics.LocaleDecisions.WithLabelValues(dec.Action.String(), dec.Locale.String()).Inc()
			},
		}),
	)

	contact := ratelimit.Middleware(ratelimit.Options{
		Limiter:             d.limiter,
		Stats:               d.stats,
		KeyFn:               ratelimit.DefaultKeyFunc(cfg.Contact.KeyHeader, cfg.Contact.UseRemoteAddr),
		AddRateLimitHeaders: cfg.Contact.Headers,
		OnReject:            func(*http.Request, string) { d.metrics.ContactRejected.Inc() },
	})
	limited := contact(d.upstream)
	r.Handle(cfg.Contact.Path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// só o envio do formulário conta para o limite
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		d.upstream.ServeHTTP(w, r)
	}))

	if d.weather != nil {
		r.Handle("/api/weather/{endpoint}", d.weather)
	}

	r.Handle("/*", d.upstream)
	return r
}

// newObservabilityRouter serve /healthz, /metrics e o reset administrativo
// do limiter. Fica em outra porta, fora do alcance público.
func newObservabilityRouter(h *health.Health, gatherer prometheus.Gatherer, limiter domain.WindowLimiter) http.Handler {
	r := chi.NewRouter()
	r.Handle("/healthz", h.Handler())
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Handle("/admin/ratelimit/contact", ratelimit.ResetHandler(limiter))
	return r
}
