// Command server runs autocrack as an HTTP API: POST a candidate
// ciphertext to /v1/crack and get back the decoded plaintext and the
// Decoding Path that produced it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/kenneth/autocrack"
	"github.com/kenneth/autocrack/internal/config"
	"github.com/kenneth/autocrack/internal/debug"
	"github.com/kenneth/autocrack/internal/metrics"
	"github.com/kenneth/autocrack/internal/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration file (defaults are used if empty)")
		listenAddr = flag.String("listen", ":8080", "HTTP listen address")
		verbose    = flag.Bool("verbose", false, "Enable debug-level logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	debug.InitFromEnv()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("server: failed to load configuration")
		}
		cfg = loaded
	}
	config.SetGlobal(cfg)

	m := metrics.NewMetricsWithConfig(metrics.Config{EnableDecoderLabel: true})
	m.StartSystemMetricsCollector()

	cracker, err := autocrack.New(cfg, logger, m)
	if err != nil {
		logger.WithError(err).Fatal("server: failed to build cracker")
	}

	handler := newHandler(cracker, logger, m)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	var wrapped http.Handler = router
	wrapped = middleware.LoggingMiddleware(logger)(wrapped)
	wrapped = middleware.RecoveryMiddleware(logger)(wrapped)

	srv := &http.Server{
		Addr:         *listenAddr,
		Handler:      wrapped,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.WithField("addr", *listenAddr).Info("server: listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server: listen failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server: graceful shutdown failed")
	}
	if err := cracker.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("server: cracker close failed")
	}
}

// crackRequest is the POST /v1/crack request body.
type crackRequest struct {
	Text string `json:"text"`
}

// crackHandler wires a Cracker into an HTTP surface.
type crackHandler struct {
	cracker *autocrack.Cracker
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

func newHandler(c *autocrack.Cracker, logger *logrus.Logger, m *metrics.Metrics) *crackHandler {
	return &crackHandler{cracker: c, logger: logger, metrics: m}
}

// RegisterRoutes wires health/readiness/liveness, the crack endpoint, and
// the Prometheus scrape endpoint onto r.
func (h *crackHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.wrapHealth(metrics.HealthHandler())).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.wrapHealth(metrics.ReadinessHandler(h.cracker.HealthCheck))).Methods(http.MethodGet)
	r.HandleFunc("/live", h.wrapHealth(metrics.LivenessHandler())).Methods(http.MethodGet)
	r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/v1/crack", h.handleCrack).Methods(http.MethodPost)
}

func (h *crackHandler) wrapHealth(inner http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner(w, r)
		h.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, http.StatusOK, time.Since(start), 0)
	}
}

// handleCrack decodes a crackRequest, runs it through the Cracker, and
// returns the DecoderResult as JSON. A nil result (timeout or exhausted
// search with no path found) is reported as 404, never as an error.
func (h *crackHandler) handleCrack(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req crackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		h.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, http.StatusBadRequest, time.Since(start), 0)
		return
	}
	if req.Text == "" {
		http.Error(w, "text must not be empty", http.StatusBadRequest)
		h.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, http.StatusBadRequest, time.Since(start), 0)
		return
	}

	result := h.cracker.Crack(r.Context(), req.Text)
	if result == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no decoding path found"})
		h.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, http.StatusNotFound, time.Since(start), 0)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.WithError(err).Error("server: failed to write crack response")
	}
	h.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, http.StatusOK, time.Since(start), 0)
}
