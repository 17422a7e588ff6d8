package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"meteo-gateway/middleware/locale"
	"meteo-gateway/weather"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const app = "meteo"

type config struct {
	ListenAddr  string `split_words:"true" default:":8080"`
	UpstreamURL string `split_words:"true" required:"true"`
	// SiteConfig é um documento YAML opcional (exclusões de locale, endpoints de clima).
	SiteConfig string `split_words:"true"`

	Log struct {
		Level  string `default:"info"`
		Format string `default:"text"`
	}

	Server struct {
		ReadHeaderTimeout time.Duration `split_words:"true" default:"10s"`
		ReadTimeout       time.Duration `split_words:"true" default:"30s"`
		WriteTimeout      time.Duration `split_words:"true" default:"30s"`
		IdleTimeout       time.Duration `split_words:"true" default:"90s"`
		ShutdownTimeout   time.Duration `split_words:"true" default:"10s"`
	}

	Observability struct {
		Address string `default:":9090"`
	}

	Contact struct {
		Path          string        `default:"/api/contact"`
		MaxRequests   int           `split_words:"true" default:"3"`
		Window        time.Duration `default:"60s"`
		CleanupEvery  time.Duration `split_words:"true" default:"5m"`
		KeyHeader     string        `split_words:"true"`
		UseRemoteAddr bool          `split_words:"true"`
		Headers       bool          `default:"true"`
	}

	Concurrency struct {
		Max     int           `default:"100"`
		Timeout time.Duration `default:"0s"`
	}

	Stats struct {
		Enabled       bool
		RedisAddr     string        `split_words:"true"`
		RedisPassword string        `split_words:"true"`
		RedisDB       int           `envconfig:"REDIS_DB"`
		Prefix        string        `default:"meteo:contact:ratelimit"`
		TTL           time.Duration `envconfig:"TTL" default:"24h"`
		Bucket        string        `default:"minute"`
		TrackKeys     bool          `split_words:"true"`
	}

	Weather struct {
		Enabled       bool
		BaseURL       string        `envconfig:"BASE_URL" default:"https://api.weatherapi.com/v1"`
		APIKey        string        `envconfig:"API_KEY"`
		APIKeySecret  string        `envconfig:"API_KEY_SECRET"`
		RPS           float64       `envconfig:"RPS" default:"5"`
		Burst         int           `default:"10"`
		Timeout       time.Duration `default:"5s"`
		CacheCounters int64         `split_words:"true" default:"100000"`
		CacheMaxBytes int64         `split_words:"true" default:"67108864"`
	}

	site siteConfig
}

type siteConfig struct {
	Exclude []string `yaml:"exclude,flow"`
	Weather struct {
		Endpoints []weather.Endpoint `yaml:"endpoints,flow"`
	} `yaml:"weather"`
}

func (s siteConfig) exclusions() []string {
	if len(s.Exclude) == 0 {
		return locale.DefaultExclusions
	}
	return s.Exclude
}

func loadConfig() (config, error) {
	// .env é opcional; variáveis já exportadas têm prioridade.
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process(app, &cfg); err != nil {
		return config{}, fmt.Errorf("failed to load env: %w", err)
	}

	site, err := parseSiteConfig(cfg.SiteConfig)
	if err != nil {
		return config{}, err
	}
	cfg.site = site

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func parseSiteConfig(doc string) (siteConfig, error) {
	var s siteConfig
	if strings.TrimSpace(doc) == "" {
		return s, nil
	}
	if err := yaml.NewDecoder(strings.NewReader(doc)).Decode(&s); err != nil {
		return siteConfig{}, fmt.Errorf("failed to decode site config: %w", err)
	}
	return s, nil
}

func (c *config) validate() error {
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("METEO_UPSTREAM_URL must be an absolute url, got %q", c.UpstreamURL)
	}
	if !strings.HasPrefix(c.Contact.Path, "/") {
		return errors.New("METEO_CONTACT_PATH must start with /")
	}
	if c.Contact.MaxRequests <= 0 {
		return errors.New("METEO_CONTACT_MAX_REQUESTS must be > 0")
	}
	if c.Contact.Window <= 0 {
		return errors.New("METEO_CONTACT_WINDOW must be > 0")
	}
	if c.Contact.CleanupEvery < 0 {
		return errors.New("METEO_CONTACT_CLEANUP_EVERY must be >= 0")
	}
	if c.Concurrency.Max < 0 {
		return errors.New("METEO_CONCURRENCY_MAX must be >= 0")
	}
	if c.Stats.Enabled && strings.TrimSpace(c.Stats.RedisAddr) == "" {
		return errors.New("METEO_STATS_REDIS_ADDR is required when METEO_STATS_ENABLED=true")
	}
	if c.Weather.Enabled && c.Weather.APIKey == "" && c.Weather.APIKeySecret == "" {
		return errors.New("METEO_WEATHER_API_KEY or METEO_WEATHER_API_KEY_SECRET is required when METEO_WEATHER_ENABLED=true")
	}
	return nil
}
