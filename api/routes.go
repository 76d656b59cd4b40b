package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediapedia/handlers"
	"mediapedia/internal/metrics"
)

// RequestIDHeader carries the per-request id in requests and responses.
const RequestIDHeader = "X-Request-ID"

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// localhostOnlyMiddleware restricts access to localhost requests only
func localhostOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		for i := len(host) - 1; i >= 0; i-- {
			if host[i] == ':' {
				host = host[:i]
				break
			}
		}
		if host != "localhost" && host != "127.0.0.1" && host != "::1" && host != "[::1]" {
			http.Error(w, "Metrics only accessible from localhost", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrumentMiddleware tags every request with an id and records its status and
// duration against the matched route template.
func instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		if rec.status >= http.StatusInternalServerError {
			log.Printf("[http] request=%s %s %s -> %d (%s)", requestID, r.Method, r.URL.Path, rec.status, elapsed)
		}
	})
}

// Register mounts API endpoints onto the provided router. gatherer backs /metrics and
// may be nil to leave the endpoint out.
func Register(
	r *mux.Router,
	launcherHandler *handlers.LauncherHandler,
	settingsHandler *handlers.SettingsHandler,
	gatherer prometheus.Gatherer,
) {
	if gatherer != nil {
		r.Handle("/metrics", localhostOnlyMiddleware(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))).
			Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(instrumentMiddleware)
	api.Use(corsMiddleware)

	api.HandleFunc("/state", launcherHandler.GetState).Methods(http.MethodGet)

	api.HandleFunc("/query", launcherHandler.SetQuery).Methods(http.MethodPut)
	api.HandleFunc("/suggestions", launcherHandler.GetSuggestions).Methods(http.MethodGet)
	api.HandleFunc("/selection", launcherHandler.SetSelection).Methods(http.MethodPut)

	api.HandleFunc("/titles/{id}/select", launcherHandler.SelectTitle).Methods(http.MethodPost)
	api.HandleFunc("/back", launcherHandler.Back).Methods(http.MethodPost)
	api.HandleFunc("/details/refresh", launcherHandler.RefreshDetails).Methods(http.MethodPost)
	api.HandleFunc("/details/links", launcherHandler.DetailLinks).Methods(http.MethodGet)

	api.HandleFunc("/trending", launcherHandler.GetTrending).Methods(http.MethodGet)
	api.HandleFunc("/trending/refresh", launcherHandler.RefreshTrending).Methods(http.MethodPost)
	api.HandleFunc("/recent", launcherHandler.GetRecent).Methods(http.MethodGet)

	api.HandleFunc("/keys/test", launcherHandler.TestKeys).Methods(http.MethodPost)
	api.HandleFunc("/keys", launcherHandler.SaveKeys).Methods(http.MethodPut)
	api.HandleFunc("/keys", launcherHandler.ResetKeys).Methods(http.MethodDelete)

	api.HandleFunc("/preferences", launcherHandler.GetPreferences).Methods(http.MethodGet)
	api.HandleFunc("/preferences/{name}", launcherHandler.SetPreference).Methods(http.MethodPut)

	api.HandleFunc("/open-target", launcherHandler.OpenTarget).Methods(http.MethodGet)

	api.HandleFunc("/settings", settingsHandler.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.PutSettings).Methods(http.MethodPut)

	// Preflight for every API path.
	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
