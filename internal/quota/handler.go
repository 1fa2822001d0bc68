package quota

import (
	"encoding/json"
	"net/http"

	"github.com/mehrclinic/records-service/internal/errs"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type quotaResponse struct {
	Success     bool        `json:"success"`
	GlobalQuota GlobalQuota `json:"globalQuota,omitempty"`
	Quota       *DrugQuota  `json:"quota,omitempty"`
}

// GetGlobalQuota handles GET /api/global-quota
func (h *Handler) GetGlobalQuota(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Get(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quotaResponse{Success: true, GlobalQuota: g})
}

// AdjustGlobalQuota handles PUT /api/global-quota
func (h *Handler) AdjustGlobalQuota(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	entry, err := h.service.Adjust(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quotaResponse{Success: true, Quota: entry})
}

// AddMonthlyTopUp handles POST /api/global-quota/monthly
func (h *Handler) AddMonthlyTopUp(w http.ResponseWriter, r *http.Request) {
	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	entry, err := h.service.AddMonthlyTopUp(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, quotaResponse{Success: true, Quota: entry})
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
