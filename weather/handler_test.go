package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"meteo-gateway/middleware/locale"
)

func TestHandler_ServesJSONWithCacheControl(t *testing.T) {
	up := newUpstream(t)
	cl, _ := newTestClient(t, up, Config{})
	h := Handler(cl)

	r := httptest.NewRequest(http.MethodGet, "http://example/api/weather/forecast?q=Paris&days=2", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=1800" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected Content-Type %q", got)
	}
}

func TestHandler_LangFromLocaleCookie(t *testing.T) {
	up := newUpstream(t)
	cl, _ := newTestClient(t, up, Config{})
	h := Handler(cl)

	r := httptest.NewRequest(http.MethodGet, "http://example/api/weather/current?q=Paris", nil)
	r.AddCookie(&http.Cookie{Name: locale.CookieName, Value: "en"})
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got := up.last().Query().Get("lang"); got != "en" {
		t.Fatalf("expected lang=en from cookie, got %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "http://example/api/weather/current?q=Paris&lang=fr", nil)
	r.AddCookie(&http.Cookie{Name: locale.CookieName, Value: "en"})
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got := up.last().Query().Get("lang"); got != "fr" {
		t.Fatalf("expected explicit lang to win, got %q", got)
	}
}

func TestHandler_ErrorStatuses(t *testing.T) {
	up := newUpstream(t)
	cl, _ := newTestClient(t, up, Config{})
	h := Handler(cl)

	cases := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/api/weather/unknown?q=Paris", http.StatusNotFound},
		{http.MethodGet, "/api/weather/current", http.StatusBadRequest},
		{http.MethodPost, "/api/weather/current?q=Paris", http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(tc.method, "http://example"+tc.target, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if w.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.target, tc.want, w.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil || body["error"] == "" {
			t.Fatalf("expected JSON error body, got err=%v body=%v", err, body)
		}
	}
}

func TestHandler_UpstreamFailureIsBadGateway(t *testing.T) {
	up := newUpstream(t)
	up.status = http.StatusInternalServerError
	cl, _ := newTestClient(t, up, Config{})

	w := httptest.NewRecorder()
	Handler(cl).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/api/weather/current?q=Paris", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "1006") {
		t.Fatalf("expected upstream body to stay out of the response, got %s", w.Body.String())
	}
}

func TestHandler_TransportErrorDoesNotLeakKey(t *testing.T) {
	stop := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-stop:
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(func() {
		close(stop)
		slow.Close()
	})

	cl, err := NewClient(Config{BaseURL: slow.URL, APIKey: "SUPERSECRETKEY", Timeout: 50 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, ferr := cl.Fetch(context.Background(), "current", url.Values{"q": {"Paris"}})
	if ferr == nil || strings.Contains(ferr.Error(), "SUPERSECRETKEY") {
		t.Fatalf("expected redacted transport error, got %v", ferr)
	}

	w := httptest.NewRecorder()
	Handler(cl).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/api/weather/current?q=Paris", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if body := w.Body.String(); strings.Contains(body, "SUPERSECRETKEY") || strings.Contains(body, slow.URL) {
		t.Fatalf("upstream details leaked to the client: %s", body)
	}
}
