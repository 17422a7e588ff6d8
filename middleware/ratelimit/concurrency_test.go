package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meteo-gateway/middleware/ratelimit/infra"
)

// fullPool nunca tem vaga; Acquire só volta quando o ctx encerra.
type fullPool struct{ waited chan time.Duration }

func (p fullPool) Acquire(ctx context.Context) (func(), bool) {
	start := time.Now()
	<-ctx.Done()
	p.waited <- time.Since(start)
	return func() {}, false
}

func TestConcurrencyMiddleware_RejectsWhenPoolIsFull(t *testing.T) {
	pool := fullPool{waited: make(chan time.Duration, 1)}
	rejected := 0

	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Pool:           pool,
		AcquireTimeout: 20 * time.Millisecond,
		OnReject:       func(*http.Request) { rejected++ },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without a slot")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/fr/previsions", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if rejected != 1 {
		t.Fatalf("expected OnReject once, got %d", rejected)
	}
	if d := <-pool.waited; d < 20*time.Millisecond {
		t.Fatalf("expected acquire to wait the timeout, waited %s", d)
	}
}

func TestConcurrencyMiddleware_SlowRenderHoldsTheSlot(t *testing.T) {
	pool := infra.NewChanPool(1)
	inside := make(chan struct{})
	release := make(chan struct{})

	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Pool:           pool,
		RejectStatus:   http.StatusTooManyRequests,
		AcquireTimeout: 10 * time.Millisecond,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fr/lent" {
			close(inside)
			<-release
		}
		w.WriteHeader(http.StatusOK)
	}))

	first := make(chan int, 1)
	go func() {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/fr/lent", nil))
		first <- w.Code
	}()

	select {
	case <-inside:
	case <-time.After(time.Second):
		t.Fatalf("first request never reached the handler")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/fr/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected custom reject status while slot is taken, got %d", w.Code)
	}

	close(release)
	if code := <-first; code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", code)
	}
	if pool.InFlight() != 0 {
		t.Fatalf("expected slot to be released, in flight %d", pool.InFlight())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/fr/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after release, got %d", w.Code)
	}
}

func TestConcurrencyMiddleware_DisabledWhenMaxZero(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	h := ConcurrencyMiddleware(ConcurrencyOptions{})(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/fr/", nil))
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected pass-through, got %d", w.Code)
	}
}
