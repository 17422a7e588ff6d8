package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type seen struct {
	path     string
	escaped  string
	rawQuery string
	calls    int
}

func newLocaleHandler(opts Options) (http.Handler, *seen) {
	s := &seen{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		s.path = r.URL.Path
		s.escaped = r.URL.EscapedPath()
		s.rawQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	})
	return Middleware(opts)(next), s
}

func TestMiddleware_RedirectsSecondaryLocale(t *testing.T) {
	h, s := newLocaleHandler(Options{})

	r := httptest.NewRequest(http.MethodGet, "http://example/meteo/paris?days=3", nil)
	r.Header.Set("Accept-Language", "en-US,fr;q=0.5")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/en/meteo/paris?days=3" {
		t.Fatalf("unexpected Location %q", got)
	}
	if got := w.Header().Get("x-locale"); got != "en" {
		t.Fatalf("expected x-locale=en, got %q", got)
	}
	if s.calls != 0 {
		t.Fatalf("expected next handler not to be called on redirect")
	}
}

func TestMiddleware_RedirectsRootWithTrailingSlash(t *testing.T) {
	h, _ := newLocaleHandler(Options{})

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "en"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("Location"); got != "/en/" {
		t.Fatalf("expected /en/, got %q", got)
	}
}

func TestMiddleware_RewritesDefaultLocale(t *testing.T) {
	h, s := newLocaleHandler(Options{})

	r := httptest.NewRequest(http.MethodGet, "http://example/glossaire?lettre=a", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from next handler, got %d", w.Code)
	}
	if w.Header().Get("Location") != "" {
		t.Fatalf("expected no redirect on rewrite")
	}
	if got := w.Header().Get("x-locale"); got != "fr" {
		t.Fatalf("expected x-locale=fr, got %q", got)
	}
	if s.path != "/fr/glossaire" || s.rawQuery != "lettre=a" {
		t.Fatalf("expected upstream to see /fr/glossaire?lettre=a, got %s?%s", s.path, s.rawQuery)
	}
	if r.URL.Path != "/glossaire" {
		t.Fatalf("expected original request to stay untouched, got %q", r.URL.Path)
	}
}

func TestMiddleware_RewritesRoot(t *testing.T) {
	h, s := newLocaleHandler(Options{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))

	if s.path != "/fr/" {
		t.Fatalf("expected /fr/, got %q", s.path)
	}
}

func TestMiddleware_CookieBeatsHeader(t *testing.T) {
	h, s := newLocaleHandler(Options{})

	r := httptest.NewRequest(http.MethodGet, "http://example/alertes", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "fr"})
	r.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK || s.path != "/fr/alertes" {
		t.Fatalf("expected rewrite to /fr/alertes, got code=%d path=%q", w.Code, s.path)
	}
}

func TestMiddleware_PassesThroughPrefixedAndExcluded(t *testing.T) {
	var decisions []Decision
	h, s := newLocaleHandler(Options{
		OnDecision: func(_ *http.Request, d Decision) { decisions = append(decisions, d) },
	})

	for _, p := range []string{"/en/forecast", "/api/contact", "/robots.txt", "/img/a.png"} {
		r := httptest.NewRequest(http.MethodGet, "http://example"+p, nil)
		r.Header.Set("Accept-Language", "en")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if w.Code != http.StatusOK || s.path != p {
			t.Fatalf("expected %q to pass through, got code=%d path=%q", p, w.Code, s.path)
		}
		if w.Header().Get("x-locale") != "" {
			t.Fatalf("expected no x-locale on pass-through for %q", p)
		}
	}

	// só /en/forecast passou pelo Matcher
	if len(decisions) != 1 || decisions[0].Action != Continue {
		t.Fatalf("expected a single continue decision, got %+v", decisions)
	}
}

func TestMiddleware_CustomCookieName(t *testing.T) {
	h, _ := newLocaleHandler(Options{CookieName: "lang"})

	r := httptest.NewRequest(http.MethodGet, "http://example/blog", nil)
	r.AddCookie(&http.Cookie{Name: "lang", Value: "en"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("Location"); got != "/en/blog" {
		t.Fatalf("expected redirect to /en/blog, got %q", got)
	}
}

func TestMiddleware_KeepsPercentEncoding(t *testing.T) {
	cases := []struct {
		target       string
		wantLocation string
		wantPath     string
		wantEscaped  string
	}{
		{"/a%2Fb", "/en/a%2Fb", "/fr/a/b", "/fr/a%2Fb"},
		{"/100%25", "/en/100%25", "/fr/100%", "/fr/100%25"},
		{"/villes/caf%C3%A9?j=1", "/en/villes/caf%C3%A9?j=1", "/fr/villes/café", "/fr/villes/caf%C3%A9"},
	}

	for _, tc := range cases {
		h, s := newLocaleHandler(Options{})

		r := httptest.NewRequest(http.MethodGet, "http://example"+tc.target, nil)
		r.Header.Set("Accept-Language", "en")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if got := w.Header().Get("Location"); got != tc.wantLocation {
			t.Fatalf("%s: expected Location %q, got %q", tc.target, tc.wantLocation, got)
		}

		r = httptest.NewRequest(http.MethodGet, "http://example"+tc.target, nil)
		h.ServeHTTP(httptest.NewRecorder(), r)

		if s.path != tc.wantPath || s.escaped != tc.wantEscaped {
			t.Fatalf("%s: expected rewrite to %q (%q), got %q (%q)", tc.target, tc.wantPath, tc.wantEscaped, s.path, s.escaped)
		}
	}
}
