package weather

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strconv"

	"meteo-gateway/middleware/locale"

	log "github.com/sirupsen/logrus"
)

// Handler serve GET /api/weather/<endpoint>. O nome do endpoint é o último
// segmento do path.
//
// Sem "lang" na query, usa o cookie de locale do site.
func Handler(c *Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
			return
		}

		name := path.Base(r.URL.Path)

		q := r.URL.Query()
		if q.Get("lang") == "" {
			if ck, err := r.Cookie(locale.CookieName); err == nil {
				if l, ok := locale.Parse(ck.Value); ok {
					q.Set("lang", l.String())
				}
			}
		}

		body, err := c.Fetch(r.Context(), name, q)
		if err != nil {
			status := statusFor(err)
			msg := err.Error()
			if status >= http.StatusInternalServerError {
				log.WithError(err).WithField("endpoint", name).Error("weather fetch failed")
				// detalhes do provedor ficam só no log
				msg = http.StatusText(status)
			}
			writeError(w, status, msg)
			return
		}

		ep, _ := c.Endpoint(name)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(ep.TTL.Seconds())))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(body)
		}
	})
}

func statusFor(err error) int {
	var upstream *UpstreamError

	switch {
	case errors.Is(err, ErrUnknownEndpoint):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrThrottled):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		if upstream.Status == http.StatusBadRequest {
			// local desconhecido no provedor
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusBadGateway
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
