package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tsawler/census/metrics"
	"github.com/tsawler/census/store"
)

// Config configures the server.
type Config struct {
	// DistrictsCSV is the census export read by the district endpoints.
	DistrictsCSV   string
	AllowedOrigins []string
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64
	Burst     int
}

// Server is the HTTP API.
type Server struct {
	cfg        Config
	log        *zap.Logger
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer
	industries store.Reader
	stats      store.Store
	handler    http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records request metrics in m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithTopIndustries serves the top_industries table from r.
func WithTopIndustries(r store.Reader) Option {
	return func(s *Server) { s.industries = r }
}

// WithAllIndiaStats serves the all_india_stats table from st. The schema
// supplies the industry titles.
func WithAllIndiaStats(st store.Store) Option {
	return func(s *Server) { s.stats = st }
}

// New builds a server.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{cfg: cfg, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.Named("api")
	s.handler = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.instrument(pattern, h))
	}

	handle("GET /{$}", s.handleRoot)
	handle("GET /healthz", s.handleHealth)
	handle("GET /districts", s.handleDistricts)
	handle("GET /districts/{name}", s.handleDistrict)
	handle("GET /chart-data", s.handleChartData)
	handle("GET /top-districts", s.handleTopDistricts)
	handle("GET /stats", s.handleStats)

	handle("GET /api/top-industries", s.handleTopIndustries)
	handle("GET /api/all-india-stats", s.handleAllIndiaStats)
	handle("GET /api/characteristics", s.handleCharacteristics)
	handle("GET /api/data/{characteristic}", s.handleCharacteristic)

	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	var h http.Handler = mux
	h = s.rateLimit(h)
	h = s.cors(h)
	h = s.logRequests(h)
	return h
}

// ============================================================================
// Responses
// ============================================================================

type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorBody{Detail: detail})
}

// serverError logs err and returns a 500 with a generic prefix.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, prefix+": "+err.Error())
}

var errBadLimit = errors.New("limit must be a non-negative integer")

// queryLimit parses the limit parameter, returning def when absent.
func queryLimit(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errBadLimit
	}
	return n, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Population Data API", "status": "running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
