package patient

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mehrclinic/records-service/internal/errs"
	"github.com/mehrclinic/records-service/internal/export"
	"github.com/mehrclinic/records-service/internal/pagination"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type singleResponse struct {
	Success        bool     `json:"success"`
	Patient        *Patient `json:"patient"`
	RemainingQuota *int     `json:"remainingQuota,omitempty"`
}

type listResponse struct {
	Success  bool            `json:"success"`
	Patients []Patient       `json:"patients"`
	Total    int             `json:"total"`
	Meta     pagination.Meta `json:"meta"`
}

type historyResponse struct {
	Success bool                `json:"success"`
	History []QuotaHistoryEntry `json:"history"`
	Total   int                 `json:"total"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register handles POST /api/patients
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	p, remaining, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, singleResponse{
		Success:        true,
		Patient:        p,
		RemainingQuota: &remaining,
	})
}

// List handles GET /api/patients
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondError(w, err)
		return
	}

	params := pagination.ParseParams(r)
	lo, hi := params.Slice(len(list))
	respondJSON(w, http.StatusOK, listResponse{
		Success:  true,
		Patients: list[lo:hi],
		Total:    len(list),
		Meta:     params.CalculateMeta(len(list)),
	})
}

// Search handles GET /api/patients/search?nationalCode=|recordNumber=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.service.Search(r.Context(), q.Get("nationalCode"), q.Get("recordNumber"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, singleResponse{Success: true, Patient: p})
}

// Get handles GET /api/patients/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, singleResponse{Success: true, Patient: p})
}

// Update handles PUT /api/patients/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	p, err := h.service.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, singleResponse{Success: true, Patient: p})
}

// AdjustQuota handles POST /api/patients/{id}/quota
func (h *Handler) AdjustQuota(w http.ResponseWriter, r *http.Request) {
	var req QuotaAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	p, err := h.service.AdjustQuota(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, singleResponse{Success: true, Patient: p})
}

// QuotaHistory handles GET /api/patients/{id}/quota-history
func (h *Handler) QuotaHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.QuotaHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, historyResponse{Success: true, History: entries, Total: len(entries)})
}

// Delete handles DELETE /api/patients/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCompletely(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deleteResponse{
		Success: true,
		Message: "Patient and all related records deleted",
	})
}

var patientExportHeader = []string{
	"Full Name", "National Code", "Record Number",
	"Birth Date", "Visit Date", "Drug", "Quota", "Registered At",
}

// Export handles GET /api/patients/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondError(w, err)
		return
	}

	rows := make([][]interface{}, 0, len(list))
	for _, p := range list {
		rows = append(rows, []interface{}{
			p.FullName, p.NationalCode, p.RecordNumber,
			p.BirthDate, p.VisitDate, p.Drug, p.Quota,
			p.CreatedAt.Format("2006-01-02"),
		})
	}

	b, err := export.Workbook("Patients", patientExportHeader, rows)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="patients.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.Write(b)
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
