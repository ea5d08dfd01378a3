package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/riskdesk/internal/api/handlers"
	"github.com/wonny/riskdesk/pkg/logger"
	"github.com/wonny/riskdesk/pkg/metrics"
)

// Routes bundles the handlers served by the router
type Routes struct {
	Report  *handlers.ReportHandler
	Alerts  *handlers.AlertsHandler
	Hub     *Hub
	Metrics *metrics.Recorder // optional
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Report endpoints
	api.HandleFunc("/report", routes.Report.GetReport).Methods("GET")
	api.HandleFunc("/report/summary", routes.Report.GetSummary).Methods("GET")
	api.HandleFunc("/risk-score", routes.Report.GetRiskScore).Methods("GET")
	api.HandleFunc("/drawdowns", routes.Report.GetDrawdowns).Methods("GET")
	api.HandleFunc("/var", routes.Report.GetVaR).Methods("GET")
	api.HandleFunc("/allocation", routes.Report.GetAllocation).Methods("GET")
	api.HandleFunc("/history", routes.Report.GetHistory).Methods("GET")
	api.HandleFunc("/refresh", routes.Report.Refresh).Methods("POST")

	// Alert endpoints
	api.HandleFunc("/alerts", routes.Alerts.GetAlerts).Methods("GET")
	api.HandleFunc("/alerts", routes.Alerts.ClearAlerts).Methods("DELETE")
	api.HandleFunc("/optimizations", routes.Alerts.GetOptimizations).Methods("GET")
	api.HandleFunc("/optimizations", routes.Alerts.ClearOptimizations).Methods("DELETE")

	// Live alerts
	if routes.Hub != nil {
		r.HandleFunc("/ws/alerts", routes.Hub.ServeWS).Methods("GET")
	}

	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics.Handler()).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log, routes.Metrics))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "riskdesk",
	})
}

// statusRecorder captures the response status; Hijack is passed through for
// websocket upgrades
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// loggingMiddleware logs HTTP requests and records request metrics
func loggingMiddleware(log *logger.Logger, rec *metrics.Recorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			if rec != nil {
				rec.ObserveHTTP(r.Method, route, strconv.Itoa(sw.status), time.Since(start))
			}

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   sw.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
