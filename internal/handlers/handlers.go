package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aerotrace-systems/aerotrace/internal/httputil"
	"github.com/aerotrace-systems/aerotrace/internal/logging"
	"github.com/aerotrace-systems/aerotrace/internal/models"
	"github.com/aerotrace-systems/aerotrace/internal/repository"
	"github.com/aerotrace-systems/aerotrace/internal/service"
)

type Handler struct {
	service *service.Service
	logger  *logging.Logger
}

func NewHandler(svc *service.Service, logger *logging.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Components handles /api/v1/components: GET lists components, POST
// ingests a new one with its history.
func (h *Handler) Components(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		components, err := h.service.ListComponents(r.Context())
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"components": components})

	case http.MethodPost:
		var req models.IngestComponentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		c, err := h.service.IngestComponent(r.Context(), &req)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, c)

	default:
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// ComponentByID handles /api/v1/components/{id} and its sub-resources:
// POST {id}/scan, GET {id}/trace, GET {id}/exceptions.
func (h *Handler) ComponentByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/components/")
	if rest == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Component ID required")
		return
	}

	id, action, _ := strings.Cut(rest, "/")

	switch action {
	case "":
		if r.Method != http.MethodGet {
			httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		snap, err := h.service.GetSnapshot(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, snap)

	case "scan":
		if r.Method != http.MethodPost {
			httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		result, err := h.service.ScanComponent(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)

	case "trace":
		if r.Method != http.MethodGet {
			httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		report, err := h.service.TraceReport(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, report)

	case "exceptions":
		if r.Method != http.MethodGet {
			httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		exceptions, err := h.service.ListExceptions(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"exceptions": exceptions})

	default:
		httputil.WriteError(w, http.StatusNotFound, "Not found")
	}
}

// ExceptionByID handles PATCH /api/v1/exceptions/{id} for human review.
func (h *Handler) ExceptionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/exceptions/")
	if id == "" || strings.Contains(id, "/") {
		httputil.WriteError(w, http.StatusBadRequest, "Exception ID required")
		return
	}

	var req models.UpdateExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ex, err := h.service.ReviewException(r.Context(), id, &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ex)
}

// FleetScan handles POST /api/v1/fleet/scan.
func (h *Handler) FleetScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	result, err := h.service.ScanFleet(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrComponentNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Component not found")
	case errors.Is(err, repository.ErrExceptionNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Exception not found")
	case errors.Is(err, repository.ErrComponentExists):
		httputil.WriteError(w, http.StatusConflict, "Component already exists")
	case errors.Is(err, service.ErrInvalidRequest):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			logging.Method(r.Method), logging.Path(r.URL.Path), logging.Err(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
