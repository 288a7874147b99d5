package controlplane

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/telemetry"
)

// Handlers holds the adapter and ambient dependencies the HTTP handlers
// need: decode JSON, validate, call into shared state, encode JSON.
type Handlers struct {
	adapter *Adapter
	logger  zerolog.Logger
	metrics *telemetry.Metrics
}

// NewRouter builds the control-plane HTTP handler: fault CRUD, stats,
// health, and Prometheus scrape endpoints.
func NewRouter(adapter *Adapter, logger zerolog.Logger, metrics *telemetry.Metrics) http.Handler {
	h := &Handlers{adapter: adapter, logger: logger, metrics: metrics}

	r := chi.NewRouter()
	r.Use(tracingMiddleware)
	r.Post("/fault", h.createFault)
	r.Get("/fault/{name}", h.getFault)
	r.Delete("/fault/{name}", h.deleteFault)
	r.Get("/faults", h.listFaults)
	r.Delete("/faults", h.deleteAllFaults)
	r.Get("/stats", h.stats)
	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// tracingMiddleware opens one span per control-plane request, reporting
// the request path and response status as span attributes.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := telemetry.Tracer().Start(r.Context(), "controlplane."+r.Method+" "+r.URL.Path,
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.path", r.URL.Path),
			))
		defer span.End()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", ww.status))
		if ww.status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(ww.status))
		}
	})
}

// statusWriter captures the status code a handler wrote, for the tracing
// middleware's span attribute.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (h *Handlers) createFault(w http.ResponseWriter, r *http.Request) {
	var dto faultPlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.adapter.Create(dto.toPlan())
	switch {
	case err == nil:
		h.writeJSON(w, r, http.StatusCreated, toDTO(created))
	case errors.Is(err, faultstore.ErrInvalid):
		h.writeError(w, r, http.StatusBadRequest, "invalid fault plan")
	case errors.Is(err, faultstore.ErrNameExists):
		h.writeError(w, r, http.StatusConflict, "a fault with this name already exists")
	case errors.Is(err, faultstore.ErrCommandOccupied):
		h.writeError(w, r, http.StatusConflict, "a fault is already registered for this command")
	default:
		h.logger.Error().Err(err).Msg("unexpected error creating fault")
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) getFault(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	plan, ok := h.adapter.GetByName(name)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "fault not found")
		return
	}
	h.writeJSON(w, r, http.StatusOK, toDTO(plan))
}

func (h *Handlers) listFaults(w http.ResponseWriter, r *http.Request) {
	plans := h.adapter.List()
	dtos := make([]faultPlanDTO, 0, len(plans))
	for _, p := range plans {
		dtos = append(dtos, toDTO(p))
	}
	h.writeJSON(w, r, http.StatusOK, dtos)
}

func (h *Handlers) deleteFault(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := h.adapter.DeleteByName(name)
	if errors.Is(err, faultstore.ErrNotFound) {
		h.writeError(w, r, http.StatusNotFound, "fault not found")
		return
	}
	h.recordStatus(r, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) deleteAllFaults(w http.ResponseWriter, r *http.Request) {
	h.adapter.DeleteAll()
	h.recordStatus(r, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, toStatsDTO(h.adapter.Stats()))
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	h.recordStatus(r, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.recordStatus(r, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handlers) recordStatus(r *http.Request, status int) {
	if h.metrics == nil {
		return
	}
	h.metrics.ControlPlaneReqs.WithLabelValues(r.URL.Path, http.StatusText(status)).Inc()
}
