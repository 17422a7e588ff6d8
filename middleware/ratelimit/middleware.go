package ratelimit

import (
	"net/http"
	"time"

	"meteo-gateway/middleware/ratelimit/application"
	"meteo-gateway/middleware/ratelimit/domain"

	log "github.com/sirupsen/logrus"
)

const TooManyRequestsMessage = "too many contact requests, please try again later"

type Options struct {
	Limiter             domain.WindowLimiter
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	Clock               domain.Clock
	RejectStatus        int
	AddRateLimitHeaders bool
	// OnReject é chamado a cada bloqueio (ex.: incrementar métrica).
	OnReject func(r *http.Request, key string)
	Logger   log.FieldLogger
}

type windowInfo interface {
	Max() int
	Window() time.Duration
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc("", false)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	svc := application.Service{
		Limiter: opts.Limiter,
		Now:     opts.Clock,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec := svc.Decide(domain.Key(key))
			if opts.Stats != nil {
				err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:       domain.Key(key),
					Allowed:   dec.Allowed,
					Remaining: dec.Remaining,
					Method:    r.Method,
					Path:      r.URL.Path,
					At:        opts.Clock(),
				})
				if err != nil {
					opts.Logger.WithError(err).Debug("rate limit stats not recorded")
				}
			}

			if opts.AddRateLimitHeaders {
				h := w.Header()
				if wi, ok := opts.Limiter.(windowInfo); ok {
					h.Set("X-RateLimit-Limit", formatInt(wi.Max()))
				}
				h.Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				if !dec.ResetAt.IsZero() {
					h.Set("X-RateLimit-Reset", formatInt64(dec.ResetAt.Unix()))
				}
			}

			if !dec.Allowed {
				if opts.OnReject != nil {
					opts.OnReject(r, key)
				}
				opts.Logger.WithFields(log.Fields{
					"key":  key,
					"path": r.URL.Path,
				}).Info("contact submission rate limited")

				w.Header().Set("Retry-After", formatInt(int(dec.RetryAfter/time.Second)))
				http.Error(w, TooManyRequestsMessage, opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ResetHandler expõe Reset para uso administrativo: DELETE ?key=<identificador>.
func ResetHandler(lim domain.WindowLimiter) http.Handler {
	svc := application.Service{Limiter: lim}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			w.Header().Set("Allow", http.MethodDelete)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		key := r.URL.Query().Get("key")
		if key == "" {
			http.Error(w, "missing key", http.StatusBadRequest)
			return
		}

		svc.Reset(domain.Key(key))
		log.WithField("key", key).Info("contact rate limit reset")
		w.WriteHeader(http.StatusNoContent)
	})
}
