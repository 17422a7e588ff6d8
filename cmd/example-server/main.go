package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meteo-gateway/middleware/locale"
	"meteo-gateway/middleware/ratelimit"
	"meteo-gateway/middleware/ratelimit/infra"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type config struct {
	ListenAddr  string        `split_words:"true" default:":8081"`
	MaxRequests int           `split_words:"true" default:"3"`
	Window      time.Duration `default:"60s"`
}

func main() {
	log.SetOutput(os.Stdout)

	var cfg config
	if err := envconfig.Process("example", &cfg); err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Exemplo: middlewares direto no webserver, sem proxy
	store := infra.NewWindowStore(
		infra.WithMaxRequests(cfg.MaxRequests),
		infra.WithWindow(cfg.Window),
	)
	stats := infra.NewMemoryStatsStore(infra.WithTrackKeys(true))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newHandler(store, stats),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("example server listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func newHandler(store *infra.WindowStore, stats *infra.MemoryStatsStore) http.Handler {
	mux := http.NewServeMux()

	contact := ratelimit.Middleware(ratelimit.Options{
		Limiter:             store,
		Stats:               stats,
		AddRateLimitHeaders: true,
	})
	submit := contact(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}))
	mux.HandleFunc("/api/contact", func(w http.ResponseWriter, r *http.Request) {
		// só POST consome o limite
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		submit.ServeHTTP(w, r)
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"total":  stats.Total(),
			"routes": stats.ByRoute(),
			"keys":   stats.ByKey(),
		})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		l, _ := locale.FromPath(r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"locale": l.String(), "path": r.URL.Path})
	})

	h := http.Handler(mux)
	h = locale.Middleware(locale.Options{})(h)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: 50})(h)
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
