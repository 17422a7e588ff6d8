package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meteo-gateway/cache"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultKeyParam = "key"
	DefaultTimeout  = 5 * time.Second
	DefaultRPS      = 5
	DefaultBurst    = 10

	maxBodyBytes  = 2 << 20
	maxErrorBytes = 512
)

type Config struct {
	BaseURL  string
	APIKey   string
	KeyParam string
	Timeout  time.Duration
	// RPS <= 0 desliga o limite de saída.
	RPS       float64
	Burst     int
	Endpoints []Endpoint
}

type Client struct {
	base      *url.URL
	key       string
	keyParam  string
	http      *http.Client
	limiter   *rate.Limiter
	cache     cache.Cache
	endpoints map[string]Endpoint
}

var ErrInvalidConfig = errors.New("invalid weather client config")

func NewClient(cfg Config, c cache.Cache) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse weather base url (%s): %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", ErrInvalidConfig, cfg.BaseURL)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}

	if cfg.KeyParam == "" {
		cfg.KeyParam = DefaultKeyParam
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = DefaultEndpoints
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
		if cfg.Burst <= 0 {
			cfg.Burst = DefaultBurst
		}
	}

	endpoints := make(map[string]Endpoint, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		if ep.Name == "" || ep.Path == "" {
			return nil, fmt.Errorf("%w: endpoint needs name and path", ErrInvalidConfig)
		}
		if _, dup := endpoints[ep.Name]; dup {
			return nil, fmt.Errorf("%w: endpoint %q is already mapped", ErrInvalidConfig, ep.Name)
		}
		endpoints[ep.Name] = ep
	}

	return &Client{
		base:      base,
		key:       cfg.APIKey,
		keyParam:  cfg.KeyParam,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(limit, cfg.Burst),
		cache:     c,
		endpoints: endpoints,
	}, nil
}

func (c *Client) Endpoint(name string) (Endpoint, bool) {
	ep, ok := c.endpoints[name]
	return ep, ok
}

// Fetch devolve o JSON do provedor para o endpoint, do cache quando possível.
func (c *Client) Fetch(ctx context.Context, name string, query url.Values) ([]byte, error) {
	ep, ok := c.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, name)
	}

	q, err := filterQuery(ep, query)
	if err != nil {
		return nil, err
	}

	cacheKey := name + "?" + q.Encode()
	if c.cache != nil {
		if body, hit := c.cache.Get(cacheKey); hit {
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThrottled, err)
	}

	body, err := c.get(ctx, ep, q)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, body, ep.TTL)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, ep Endpoint, q url.Values) ([]byte, error) {
	u := c.base.JoinPath(ep.Path)

	withKey := url.Values{}
	for k, v := range q {
		withKey[k] = v
	}
	withKey.Set(c.keyParam, c.key)
	u.RawQuery = withKey.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// a URL completa leva a chave; o erro só cita o path do endpoint
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = c.base.JoinPath(ep.Path).String()
		}
		return nil, fmt.Errorf("weather request to %s failed: %w", ep.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		log.WithFields(log.Fields{
			"endpoint": ep.Name,
			"status":   resp.StatusCode,
		}).Warn("weather upstream failed")
		return nil, &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read weather response: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: %s over %d bytes", ErrResponseTooLarge, ep.Path, maxBodyBytes)
	}
	return body, nil
}

func filterQuery(ep Endpoint, in url.Values) (url.Values, error) {
	out := url.Values{}
	for _, k := range AllowedParams {
		if v := strings.TrimSpace(in.Get(k)); v != "" {
			out.Set(k, v)
		}
	}
	for k, v := range ep.Params {
		out.Set(k, v)
	}
	if out.Get("q") == "" {
		return nil, ErrMissingQuery
	}
	return out, nil
}
