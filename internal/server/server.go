// Package server provides the HTTP server and routing.
package server

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/xxxbrian/geosite2abp/internal/cache"
	"github.com/xxxbrian/geosite2abp/internal/converter"
	"github.com/xxxbrian/geosite2abp/internal/report"
	"github.com/xxxbrian/geosite2abp/internal/source"
)

// Server renders ABP documents on demand
type Server struct {
	fetcher     converter.Fetcher
	catalog     *source.Catalog
	resultCache *cache.ResultCache
	opts        converter.Options
	jobs        int
	repoURL     string
	now         func() time.Time
}

// Config contains server configuration.
type Config struct {
	Catalog *source.Catalog
	Options converter.Options
	Jobs    int
	RepoURL string
}

// NewServer creates a new Server
func NewServer(f converter.Fetcher, rc *cache.ResultCache, cfg Config) *Server {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = source.DefaultCatalog()
	}
	return &Server{
		fetcher:     f,
		catalog:     catalog,
		resultCache: rc,
		opts:        cfg.Options,
		jobs:        cfg.Jobs,
		repoURL:     cfg.RepoURL,
		now:         time.Now,
	}
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware)
	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/abp/{items}", s.handleABP)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// handleRoot redirects to the project repository when one is configured
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if s.repoURL == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("GET /abp/{item[,item...]}\n"))
		return
	}
	http.Redirect(w, r, s.repoURL, http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// handleABP handles /abp/:items requests
func (s *Server) handleABP(w http.ResponseWriter, r *http.Request) {
	items := source.ParseItems([]string{chi.URLParam(r, "items")})
	if len(items) == 0 {
		http.Error(w, "Invalid items parameter", http.StatusBadRequest)
		return
	}

	cacheKey := strings.Join(items, ",")
	if s.resultCache != nil {
		if result, ok := s.resultCache.Get(cacheKey); ok {
			logrus.Debugf("Cache hit for %s", cacheKey)
			writeDocument(w, result, true)
			return
		}
	}

	logrus.Debugf("Cache miss for %s, generating...", cacheKey)

	outcomes := converter.ResolveAll(r.Context(), items, s.catalog, s.fetcher, s.opts, s.jobs, nil)

	var buf bytes.Buffer
	doc := report.NewWriter(&buf)
	if err := doc.WriteHeader(items, s.now()); err != nil {
		http.Error(w, "Failed to render", http.StatusInternalServerError)
		return
	}
	complete := true
	for _, o := range outcomes {
		if o.Err != nil {
			logrus.WithField("item", o.Item).Error(o.Err)
		}
		complete = complete && o.Complete()
		if err := doc.WriteBlock(o.Item, o.Lines); err != nil {
			http.Error(w, "Failed to render", http.StatusInternalServerError)
			return
		}
	}
	if err := doc.Close(); err != nil {
		http.Error(w, "Failed to render", http.StatusInternalServerError)
		return
	}

	// a cancelled request leaves branches unfetched even without recorded faults
	complete = complete && r.Context().Err() == nil

	output := buf.String()
	if s.resultCache != nil {
		if s.resultCache.Store(cacheKey, output, complete) {
			logrus.Infof("Generated and cached result for %s", cacheKey)
		} else {
			logrus.Warnf("Generated partial result for %s, not caching", cacheKey)
		}
	}

	writeDocument(w, output, complete)
}

func writeDocument(w http.ResponseWriter, body string, cacheable bool) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if cacheable {
		w.Header().Set("Cache-Control", "public, max-age=1800")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	_, _ = w.Write([]byte(body))
}

// LoggingMiddleware logs all HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.Infof("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
