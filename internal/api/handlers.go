package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/uwbench/renewal/internal/calculation"
	"github.com/uwbench/renewal/internal/config"
	"github.com/uwbench/renewal/internal/domain"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Dispatcher *calculation.Dispatcher
	Parser     *config.InputParser
}

// NewHandler creates a new handler around a dispatcher.
func NewHandler(dispatcher *calculation.Dispatcher) *Handler {
	return &Handler{
		Dispatcher: dispatcher,
		Parser:     config.NewInputParser(),
	}
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCarriers returns the supported carrier identifiers.
func (h *Handler) ListCarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CarriersResponse{Carriers: domain.Carriers})
}

// Calculate runs one renewal projection from a JSON input body.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var input domain.RenewalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.Parser.ValidateInput(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input", err)
		return
	}

	result, err := h.Dispatcher.Dispatch(r.Context(), &input)
	if err != nil {
		writeError(w, statusForError(err), "calculation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusForError maps calculation errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, calculation.ErrUnsupportedCarrier),
		errors.Is(err, calculation.ErrMissingParameter),
		errors.Is(err, calculation.ErrPlanDataNotFound):
		return http.StatusBadRequest
	case errors.Is(err, calculation.ErrInsufficientData),
		errors.Is(err, calculation.ErrZeroMemberMonths):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	writeJSON(w, status, ErrorResponse{Error: message, Detail: err.Error()})
}
