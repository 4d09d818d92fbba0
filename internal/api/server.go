// Package api provides the HTTP server for FanPulse.
// It exposes the progression engine as a JSON API for presentation layers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/fanpulse/fanpulse/internal/app/progression"
	"github.com/fanpulse/fanpulse/internal/domain"
	"github.com/fanpulse/fanpulse/internal/health"
	"github.com/fanpulse/fanpulse/internal/infra/metrics"
)

// Version is reported by /api/version.
const Version = "0.3.0"

// Server is the FanPulse HTTP API server.
type Server struct {
	engine         *progression.Engine
	events         domain.EventLog // nil disables /events
	health         *health.Checker
	metricsEnabled bool
	corsOrigins    []string
	timeout        time.Duration
}

// NewServer creates a new API server.
func NewServer(engine *progression.Engine, events domain.EventLog) *Server {
	return &Server{
		engine:      engine,
		events:      events,
		corsOrigins: []string{"*"},
		timeout:     30 * time.Second,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth sets the checker reported by /api/health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetCORSOrigins replaces the allowed origins. "*" allows any.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetRequestTimeout bounds every request. Zero keeps the default.
func (s *Server) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(s.corsMiddleware)
	r.Use(requestMetrics)

	// Liveness for load balancers
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"version": Version,
			})
		})

		// Catalogs
		r.Get("/tiers", s.handleTiers)
		r.Get("/missions", s.handleMissions)
		r.Get("/wheel", s.handleWheel)
		r.Get("/profile-items", s.handleProfileItems)

		r.Post("/users", s.handleOnboard)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleView)
			r.Post("/points", s.handlePoints)
			r.Post("/missions/{missionID}", s.handleMission)
			r.Post("/socials/{platform}", s.handleSocial)
			r.Post("/profile/{itemID}", s.handleProfileItem)
			r.Post("/auth", s.handleAuth)
			r.Post("/team", s.handleTeam)
			r.Post("/sign-in", s.handleSignIn)
			r.Post("/fuel", s.handleFuel)
			r.Post("/spin", s.handleSpin)
			r.Post("/settle", s.handleSettle)
			r.Post("/shields", s.handleShield)
			r.Post("/reset", s.handleReset)
			r.Get("/history", s.handleHistory)
			if s.events != nil {
				r.Get("/events", s.handlePendingEvents)
				r.Post("/events/{eventID}/shown", s.handleEventShown)
			}
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"healthy": true})
		return
	}
	statuses := s.health.Statuses()
	if len(statuses) == 0 {
		statuses = s.health.RunOnce(r.Context())
	}
	code := http.StatusOK
	if !s.health.IsHealthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"healthy": code == http.StatusOK,
		"checks":  statuses,
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeEngineError maps domain sentinels to HTTP status codes.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrEventNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoSpinsAvailable),
		errors.Is(err, domain.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnknownPlatform),
		errors.Is(err, domain.ErrUnknownMission),
		errors.Is(err, domain.ErrUnknownProfileItem),
		errors.Is(err, domain.ErrUnverifiedIdentity),
		errors.Is(err, domain.ErrTeamRequired):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("[api] Request failed")
	}
	writeError(w, status, err.Error())
}

// decodeBody decodes an optional JSON body. An empty body is not an error.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// queryLimit reads ?limit=N, returning fallback when absent or invalid.
func queryLimit(r *http.Request, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, o := range s.corsOrigins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

// requestMetrics counts requests by matched route pattern.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
