package controlplane

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/telemetry"
)

// NewServer wraps the control-plane router with permissive CORS (operators
// typically drive this from a browser-based dashboard) and returns a
// ready-to-serve *http.Server.
func NewServer(addr string, adapter *Adapter, logger zerolog.Logger, metrics *telemetry.Metrics) *http.Server {
	router := NewRouter(adapter, logger, metrics)
	handler := cors.AllowAll().Handler(router)

	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}
