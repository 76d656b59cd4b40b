package metadata

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"mediapedia/internal/metrics"
)

const (
	maxResponseBytes = 2 << 20
	redisKeyPrefix   = "mediapedia:provider:"
)

var (
	// ErrNotConfigured is returned by provider calls made without an API key.
	ErrNotConfigured = errors.New("provider api key not configured")
	// ErrSchema marks a response that decoded but did not have the expected shape.
	ErrSchema = errors.New("unexpected provider response")
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider string
	Code     int
	Status   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Status)
}

// ResponseCache stores raw provider response bodies shared between processes.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration)
}

// RedisResponseCache keeps provider responses in Redis.
type RedisResponseCache struct {
	client *redis.Client
}

func NewRedisResponseCache(client *redis.Client) *RedisResponseCache {
	return &RedisResponseCache{client: client}
}

func (c *RedisResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[metadata] response cache read failed: %v", err)
		}
		return nil, false
	}
	return data, true
}

func (c *RedisResponseCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, body, ttl).Err(); err != nil {
		log.Printf("[metadata] response cache write failed: %v", err)
	}
}

// HTTPOptions tunes the shared provider transport.
type HTTPOptions struct {
	Client      *http.Client
	MinInterval time.Duration
	Attempts    uint
	Backoff     time.Duration
	Cache       ResponseCache
	CacheTTL    time.Duration
}

// providerHTTP is the throttled, retrying GET transport used by both provider clients.
type providerHTTP struct {
	name     string
	httpc    *http.Client
	limiter  *rate.Limiter
	attempts uint
	backoff  time.Duration
	cache    ResponseCache
	cacheTTL time.Duration
}

func newProviderHTTP(name string, opts HTTPOptions) *providerHTTP {
	httpc := opts.Client
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	attempts := opts.Attempts
	if attempts == 0 {
		attempts = 3
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 300 * time.Millisecond
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 6 * time.Hour
	}
	return &providerHTTP{
		name:     name,
		httpc:    httpc,
		limiter:  rate.NewLimiter(limit, 1),
		attempts: attempts,
		backoff:  backoff,
		cache:    opts.Cache,
		cacheTTL: cacheTTL,
	}
}

// getJSON GETs endpoint with params and decodes the body into v. Rate limits and
// server errors are retried with exponential backoff; other 4xx responses and decode
// failures are not. validate, when set, checks the decoded v; a body it rejects is an
// error and is never cached. Cacheable responses are served from and written to the
// response cache keyed by the URL without credentials.
func (p *providerHTTP) getJSON(ctx context.Context, endpoint string, params url.Values, cacheable bool, v any, validate func() error) error {
	if validate == nil {
		validate = func() error { return nil }
	}

	cacheKey := ""
	if cacheable && p.cache != nil {
		cacheKey = p.cacheKey(endpoint, params)
		if body, ok := p.cache.Get(ctx, cacheKey); ok {
			if err := json.Unmarshal(body, v); err == nil && validate() == nil {
				metrics.ResponseCacheHitsTotal.WithLabelValues(p.name).Inc()
				return nil
			}
			// Drop whatever the rejected entry decoded before refetching.
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && !rv.IsNil() {
				rv.Elem().SetZero()
			}
		}
	}

	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	start := time.Now()
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			return p.fetch(ctx, reqURL)
		},
		retry.Context(ctx),
		retry.Attempts(p.attempts),
		retry.Delay(p.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[%s] request failed (attempt %d/%d): %v", p.name, n+1, p.attempts, err)
		}),
	)
	metrics.ProviderRequestDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(p.name, "error").Inc()
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(p.name, "invalid").Inc()
		return fmt.Errorf("%w: %s: %v", ErrSchema, p.name, err)
	}
	if err := validate(); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(p.name, "invalid").Inc()
		return err
	}
	metrics.ProviderRequestsTotal.WithLabelValues(p.name, "ok").Inc()

	if cacheKey != "" {
		p.cache.Set(ctx, cacheKey, body, p.cacheTTL)
	}
	return nil
}

func (p *providerHTTP) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, retry.Unrecoverable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Provider: p.name, Code: resp.StatusCode, Status: resp.Status}
	}
	if resp.StatusCode >= 400 {
		return nil, retry.Unrecoverable(&StatusError{Provider: p.name, Code: resp.StatusCode, Status: resp.Status})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (p *providerHTTP) cacheKey(endpoint string, params url.Values) string {
	clean := url.Values{}
	for k, vs := range params {
		if k == "api_key" || k == "apikey" {
			continue
		}
		clean[k] = vs
	}
	sum := sha1.Sum([]byte(strings.ToLower(endpoint) + "?" + clean.Encode()))
	return p.name + ":" + hex.EncodeToString(sum[:])
}
