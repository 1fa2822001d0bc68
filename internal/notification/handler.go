package notification

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mehrclinic/records-service/internal/errs"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type listResponse struct {
	Success       bool           `json:"success"`
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
}

type singleResponse struct {
	Success      bool          `json:"success"`
	Notification *Notification `json:"notification"`
}

// List handles GET /api/notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Success: true, Notifications: list, Total: len(list)})
}

// Create handles POST /api/notifications
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	n, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, singleResponse{Success: true, Notification: n})
}

// MarkRead handles PUT /api/notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	n, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, singleResponse{Success: true, Notification: n})
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondMessage(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]interface{}{"success": false, "error": msg})
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errs.IsValidation(err), errs.IsConflict(err):
		respondMessage(w, http.StatusBadRequest, err.Error())
	case errs.IsNotFound(err):
		respondMessage(w, http.StatusNotFound, err.Error())
	default:
		respondMessage(w, http.StatusInternalServerError, err.Error())
	}
}
