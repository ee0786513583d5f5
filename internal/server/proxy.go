package server

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cardforge/cardforge-go/internal/metrics"
)

// clientVersionHeader is the only upstream client header passed through.
const clientVersionHeader = "x-goog-api-client"

// upstreamTimeout bounds one proxied call.
const upstreamTimeout = 60 * time.Second

// Proxy is a stateless passthrough to the text-generation origin. It injects
// the API key as a query parameter, forwards path, query and body verbatim,
// and propagates the upstream status and body including error bodies.
type Proxy struct {
	origin         string
	apiKey         string
	defaultVersion string
	stripPrefix    string
	client         *http.Client
	logger         *slog.Logger
	metrics        *metrics.Collector
}

// NewProxy creates the reverse proxy handler. stripPrefix is removed from
// the request path before forwarding (the mount point, e.g. "/proxy").
func NewProxy(origin, apiKey, defaultVersion, stripPrefix string, collector *metrics.Collector, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{
		origin:         strings.TrimSuffix(origin, "/"),
		apiKey:         apiKey,
		defaultVersion: defaultVersion,
		stripPrefix:    stripPrefix,
		client:         &http.Client{Timeout: upstreamTimeout},
		logger:         logger,
		metrics:        collector,
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Widest CORS policy first, whatever the request is.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Max-Age", "3600")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if p.apiKey == "" {
		p.logger.Error("upstream API key missing")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "API Key missing"})
		return
	}

	path := r.URL.Path
	if p.stripPrefix != "" {
		path = strings.TrimPrefix(path, p.stripPrefix)
	}
	if path == "" {
		path = "/"
	}
	// Guard against path pollution from naive client concatenation.
	path = strings.ReplaceAll(path, "//", "/")

	query := r.URL.Query()
	query.Set("key", p.apiKey)
	targetURL := p.origin + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, r.Body)
	if err != nil {
		p.fail(w, "build upstream request", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	version := r.Header.Get(clientVersionHeader)
	if version == "" {
		version = p.defaultVersion
	}
	req.Header.Set(clientVersionHeader, version)

	p.logger.Debug("forwarding to upstream", "method", r.Method, "path", path)

	start := time.Now()
	resp, err := p.client.Do(req)
	if p.metrics != nil {
		p.metrics.RecordTiming(metrics.OpProxyCall, time.Since(start))
	}
	if err != nil {
		p.fail(w, "upstream call", err)
		return
	}
	defer resp.Body.Close()

	// Propagate the upstream response verbatim, error bodies included.
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		p.logger.Warn("copy upstream body", "error", err)
	}
}

func (p *Proxy) fail(w http.ResponseWriter, stage string, err error) {
	p.logger.Error("proxy error", "stage", stage, "error", err)
	respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Proxy Exception",
		"details": err.Error(),
	})
}
