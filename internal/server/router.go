package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aerotrace-systems/aerotrace/internal/handlers"
	"github.com/aerotrace-systems/aerotrace/internal/middleware"
)

// NewRouter constructs a ServeMux with component integrity routes registered.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/components", h.Components)
	mux.HandleFunc("/api/v1/components/", h.ComponentByID)
	mux.HandleFunc("/api/v1/exceptions/", h.ExceptionByID)
	mux.HandleFunc("/api/v1/fleet/scan", h.FleetScan)
	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	return middleware.RequestID(mux)
}
