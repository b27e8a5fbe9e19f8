// Package fetcher downloads geosite rule lists.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xxxbrian/geosite2abp/internal/cache"
	"github.com/xxxbrian/geosite2abp/internal/metrics"
)

const (
	// DefaultTimeout bounds one list download.
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Geosite2ABP-Go/1.0"
)

// ErrEmptyBody is returned when an upstream list has no content.
var ErrEmptyBody = errors.New("empty body")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL    string
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// HTTP fetches rule lists over HTTP(S)
type HTTP struct {
	client    *http.Client
	userAgent string
	cache     *cache.BodyCache
}

// NewHTTP creates a new HTTP fetcher. A nil cache disables caching.
func NewHTTP(timeout time.Duration, userAgent string, bodyCache *cache.BodyCache) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTP{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		cache:     bodyCache,
	}
}

// Fetch returns the body behind url. Cached bodies within TTL are served
// without a request; stale ones are revalidated with If-None-Match.
func (f *HTTP) Fetch(ctx context.Context, url string) (string, error) {
	var etag string
	if f.cache != nil {
		body, cachedETag, ok := f.cache.Get(url)
		if ok {
			logrus.Debugf("Cache hit for %s", url)
			metrics.Fetches.WithLabelValues("cached").Inc()
			return body, nil
		}
		etag = cachedETag
		logrus.Debugf("Cache miss for %s", url)
	}

	start := time.Now()
	body, newETag, notModified, err := f.get(ctx, url, etag)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Fetches.WithLabelValues("error").Inc()
		return "", err
	}

	if notModified {
		cached, _, ok := f.cache.GetAny(url)
		if ok {
			if err := f.cache.Touch(url); err != nil {
				logrus.Warnf("Failed to persist body cache: %v", err)
			}
			metrics.Fetches.WithLabelValues("cached").Inc()
			return cached, nil
		}
		// cache entry vanished between Get and now; fall through as empty
		body = ""
	}

	if body == "" {
		metrics.Fetches.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("GET %s: %w", url, ErrEmptyBody)
	}

	if f.cache != nil {
		if err := f.cache.Set(url, body, newETag); err != nil {
			logrus.Warnf("Failed to persist body cache: %v", err)
		}
	}
	metrics.Fetches.WithLabelValues("ok").Inc()
	return body, nil
}

func (f *HTTP) get(ctx context.Context, url, etag string) (string, string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", false, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && etag != "" {
		return "", etag, true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", false, &StatusError{URL: url, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to read response: %w", err)
	}

	return string(data), resp.Header.Get("ETag"), false, nil
}
