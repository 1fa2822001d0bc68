package delivery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mehrclinic/records-service/internal/drug"
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
	Success  bool      `json:"success"`
	Delivery *Delivery `json:"delivery"`
}

type listResponse struct {
	Success    bool            `json:"success"`
	Deliveries []Delivery      `json:"deliveries"`
	Total      int             `json:"total"`
	Meta       pagination.Meta `json:"meta"`
}

type reportResponse struct {
	Success bool           `json:"success"`
	Report  *MonthlyReport `json:"report"`
}

// Record handles POST /api/drug-delivery
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	d, err := h.service.Record(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, singleResponse{Success: true, Delivery: d})
}

// Update handles PUT /api/drug-delivery/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	d, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, singleResponse{Success: true, Delivery: d})
}

// Get handles GET /api/drug-delivery/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, singleResponse{Success: true, Delivery: d})
}

// List handles GET /api/drug-delivery
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("recordNumber"))
	if err != nil {
		respondError(w, err)
		return
	}

	params := pagination.ParseParams(r)
	lo, hi := params.Slice(len(list))
	respondJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Deliveries: list[lo:hi],
		Total:      len(list),
		Meta:       params.CalculateMeta(len(list)),
	})
}

// MonthlyReport handles GET /api/monthly-report?month=&year=
func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	report, err := h.service.MonthlyReport(r.Context(), month, year)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reportResponse{Success: true, Report: report})
}

var deliveryExportHeader = []string{
	"Record Number", "Patient Name", "National Code",
	"Drug", "Quantity", "Reason", "Persian Date", "Month", "Year", "Time",
}

// Export handles GET /api/drug-delivery/export: one spreadsheet row per
// dispensed drug.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("recordNumber"))
	if err != nil {
		respondError(w, err)
		return
	}

	var rows [][]interface{}
	for _, d := range list {
		for _, name := range d.Drugs {
			rows = append(rows, []interface{}{
				d.RecordNumber, d.PatientName, d.NationalCode,
				name, d.DrugQuantities[name], d.Reason,
				d.PersianDate, d.Month, d.Year, d.DeliveryTime,
			})
		}
	}

	b, err := export.Workbook("Deliveries", deliveryExportHeader, rows)
	if err != nil {
		respondError(w, err)
		return
	}
	sendWorkbook(w, "drug-deliveries.xlsx", b)
}

var reportExportHeader = []string{"Drug", "Type", "Quantity"}

// ExportReport handles GET /api/monthly-report/export?month=&year=
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	report, err := h.service.MonthlyReport(r.Context(), month, year)
	if err != nil {
		respondError(w, err)
		return
	}

	// Catalog order keeps the sheet stable across requests; deliveries of
	// drugs since removed from the catalog follow, sorted by name.
	var rows [][]interface{}
	for _, name := range drug.Names() {
		if usage, ok := report.Drugs[name]; ok {
			rows = append(rows, []interface{}{name, usage.Type, usage.Quantity})
		}
	}
	var leftovers []string
	for name := range report.Drugs {
		if !drug.Valid(name) {
			leftovers = append(leftovers, name)
		}
	}
	sort.Strings(leftovers)
	for _, name := range leftovers {
		usage := report.Drugs[name]
		rows = append(rows, []interface{}{name, usage.Type, usage.Quantity})
	}
	rows = append(rows, []interface{}{"Total", "", report.TotalUsed})

	b, err := export.Workbook("Monthly Report", reportExportHeader, rows)
	if err != nil {
		respondError(w, err)
		return
	}
	sendWorkbook(w, fmt.Sprintf("monthly-report-%s-%d.xlsx", month, year), b)
}

func sendWorkbook(w http.ResponseWriter, filename string, b []byte) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
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
