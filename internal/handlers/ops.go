package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpsHandler serves the internal health and metrics endpoints.
type OpsHandler struct {
	logger    *slog.Logger
	startTime time.Time
}

func NewOpsHandler(logger *slog.Logger) *OpsHandler {
	return &OpsHandler{
		logger:    logger,
		startTime: time.Now(),
	}
}

func (h *OpsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (h *OpsHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Error("Failed to write health response", "error", err)
	}
}
