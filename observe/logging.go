package observe

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-Id"

type contextKey uint

const requestIDKey contextKey = 1

// WithRequestID reaproveita o X-Request-Id do cliente ou gera um UUID, e o
// repassa ao upstream e à resposta.
func WithRequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
		})
	}
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithLogging registra requests que terminaram com status >= 400.
func WithLogging(logger log.FieldLogger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			defer func() {
				entry := logger.WithFields(log.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"code":       sw.Code,
					"address":    r.RemoteAddr,
					"user_agent": r.UserAgent(),
					"request_id": RequestID(r.Context()),
				})

				switch c := sw.Code; {
				case c >= http.StatusInternalServerError:
					entry.Error("upstream failed")
				case c >= http.StatusBadRequest:
					entry.Warn("request failed")
				default:
					entry.Debug("request served")
				}
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
