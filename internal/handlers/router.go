package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/auth"
	"github.com/ukydev/service-ledger/internal/middleware"
)

// RouterConfig holds the dependencies of the HTTP API.
type RouterConfig struct {
	Ledger        Ledger
	Journal       EventJournal
	Auth          *auth.Service
	RateLimit     int
	RateWindowSec int
}

// NewRouter creates the API router with all routes.
func NewRouter(cfg RouterConfig) *mux.Router {
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth)

	sessions := NewSessionHandler(cfg.Auth)
	centers := NewServiceCenterHandler(cfg.Ledger)
	records := NewRecordHandler(cfg.Ledger, cfg.Journal)

	// The limiter keys on the session account, so on protected routes it
	// runs after authentication; anonymous routes are limited per IP.
	limit := func(h http.Handler) http.Handler { return h }
	if cfg.RateLimit > 0 && cfg.RateWindowSec > 0 {
		limit = middleware.NewRateLimitMiddleware().RateLimit(cfg.RateLimit, cfg.RateWindowSec)
	}
	public := func(h http.HandlerFunc) http.Handler {
		return limit(h)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(limit(h))
	}

	r := mux.NewRouter()
	r.Use(requestLogger)

	r.Handle("/health", public(healthCheckHandler)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/session", public(sessions.CreateSession)).Methods(http.MethodPost)
	api.Handle("/brand", public(centers.Brand)).Methods(http.MethodGet)

	api.Handle("/service-centers", public(centers.List)).Methods(http.MethodGet)
	api.Handle("/service-centers", protected(centers.Register)).Methods(http.MethodPost)
	api.Handle("/service-centers/{account}", public(centers.Get)).Methods(http.MethodGet)
	api.Handle("/service-centers/{account}", protected(centers.Remove)).Methods(http.MethodDelete)

	api.Handle("/records", protected(records.Create)).Methods(http.MethodPost)
	api.Handle("/records/count", public(records.Count)).Methods(http.MethodGet)
	api.Handle("/records/unverified", public(records.Unverified)).Methods(http.MethodGet)
	api.Handle("/records/{id:[0-9]+}", public(records.Get)).Methods(http.MethodGet)
	api.Handle("/records/{id:[0-9]+}/verify/brand", public(records.VerifyByBrand)).Methods(http.MethodPost)
	api.Handle("/records/{id:[0-9]+}/verify/user", public(records.VerifyByUser)).Methods(http.MethodPost)
	api.Handle("/records/{id:[0-9]+}/parts", public(records.Parts)).Methods(http.MethodGet)
	api.Handle("/records/{id:[0-9]+}/events", public(records.Events)).Methods(http.MethodGet)

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start),
		}).Debug("Handled request")
	})
}
