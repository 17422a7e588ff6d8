package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"meteo-gateway/cache"
	"meteo-gateway/middleware/ratelimit/domain"
	"meteo-gateway/middleware/ratelimit/infra"
	"meteo-gateway/observe"
	"meteo-gateway/secret"
	"meteo-gateway/weather"

	"github.com/hellofresh/health-go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var (
	version = "dev"
	healthy int32

	errShuttingDown = errors.New("gateway is shutting down")
)

func init() {
	log.SetOutput(os.Stdout)
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	configureLogging(&cfg)

	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		log.Fatalf("invalid METEO_UPSTREAM_URL: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observe.NewMetrics(reg)

	limiter := infra.NewWindowStore(
		infra.WithMaxRequests(cfg.Contact.MaxRequests),
		infra.WithWindow(cfg.Contact.Window),
		infra.WithCleanupEvery(cfg.Contact.CleanupEvery),
	)
	limiter.StartJanitor(ctx)

	checks, err := health.New(
		health.WithComponent(health.Component{Name: "meteo-gateway", Version: version}),
		health.WithChecks(health.Config{
			Name: "gateway",
			Check: func(context.Context) error {
				if atomic.LoadInt32(&healthy) == 1 {
					return nil
				}
				return errShuttingDown
			},
		}),
	)
	if err != nil {
		log.Fatalf("failed to initialize health checks: %v", err)
	}

	var stats domain.StatsStore
	if cfg.Stats.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Stats.RedisAddr,
			Password: cfg.Stats.RedisPassword,
			DB:       cfg.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		redisStats := infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
		)
		stats = redisStats

		if err := checks.Register(health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check:     redisStats.Ping,
		}); err != nil {
			log.Fatalf("failed to register redis health check: %v", err)
		}
	}

	var weatherHandler http.Handler
	if cfg.Weather.Enabled {
		client, closeWeather, err := newWeatherClient(ctx, &cfg)
		if err != nil {
			log.Fatalf("failed to initialize weather client: %v", err)
		}
		defer closeWeather()
		weatherHandler = weather.Handler(client)
	}

	h := newRouter(routerDeps{
		cfg:      &cfg,
		upstream: newUpstreamProxy(target),
		limiter:  limiter,
		stats:    stats,
		weather:  weatherHandler,
		metrics:  metrics,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	obs := &http.Server{
		Addr:              cfg.Observability.Address,
		Handler:           newObservabilityRouter(checks, reg, limiter),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	go func() {
		log.Infof("observability listening on %s", cfg.Observability.Address)
		if err := obs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("observability server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		log.Info("gateway is shutting down...")
		atomic.StoreInt32(&healthy, 0)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to gracefully shutdown the gateway: %v", err)
		}
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to gracefully shutdown observability server: %v", err)
		}
	}()

	log.WithFields(log.Fields{
		"addr":     cfg.ListenAddr,
		"upstream": target.String(),
	}).Info("gateway listening")
	log.WithFields(log.Fields{
		"path":          cfg.Contact.Path,
		"max":           cfg.Contact.MaxRequests,
		"window":        cfg.Contact.Window,
		"cleanup_every": cfg.Contact.CleanupEvery,
		"key_header":    cfg.Contact.KeyHeader,
	}).Info("contact rate limit")
	log.WithFields(log.Fields{
		"enabled":    cfg.Stats.Enabled,
		"redis_addr": cfg.Stats.RedisAddr,
		"bucket":     cfg.Stats.Bucket,
		"ttl":        cfg.Stats.TTL,
		"track_keys": cfg.Stats.TrackKeys,
	}).Info("contact rate limit stats")
	log.WithFields(log.Fields{
		"max":             cfg.Concurrency.Max,
		"acquire_timeout": cfg.Concurrency.Timeout,
	}).Info("concurrency")
	log.WithField("enabled", cfg.Weather.Enabled).Info("weather relay")

	atomic.StoreInt32(&healthy, 1)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	log.Info("gateway stopped")
}

func configureLogging(cfg *config) {
	lvl, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warnf("invalid METEO_LOG_LEVEL %q, using info", cfg.Log.Level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

const weatherKeyEnv = "METEO_WEATHER_API_KEY"

// newWeatherClient resolve a chave (env ou Secret Manager) e monta cache + client.
func newWeatherClient(ctx context.Context, cfg *config) (*weather.Client, func(), error) {
	var (
		src  secret.Source = secret.NewEnvSource()
		name               = weatherKeyEnv
		done               = func() {}
	)

	if cfg.Weather.APIKeySecret != "" {
		gsm, err := secret.NewGoogleSecretManager(ctx)
		if err != nil {
			return nil, nil, err
		}
		src, name = gsm, cfg.Weather.APIKeySecret
		done = gsm.Close
	}

	key, err := src.Get(ctx, name)
	done()
	if err != nil {
		return nil, nil, err
	}

	c, err := cache.NewInMemory(cfg.Weather.CacheCounters, cfg.Weather.CacheMaxBytes)
	if err != nil {
		return nil, nil, err
	}

	endpoints := cfg.site.Weather.Endpoints
	if len(endpoints) == 0 {
		endpoints = weather.DefaultEndpoints
	}

	client, err := weather.NewClient(weather.Config{
		BaseURL:   cfg.Weather.BaseURL,
		APIKey:    string(key),
		Timeout:   cfg.Weather.Timeout,
		RPS:       cfg.Weather.RPS,
		Burst:     cfg.Weather.Burst,
		Endpoints: endpoints,
	}, c)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return client, c.Close, nil
}
