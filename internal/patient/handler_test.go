package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/mehrclinic/records-service/internal/errs"
)

type mockService struct {
	RegisterFunc         func(ctx context.Context, req Request) (*Patient, int, error)
	GetFunc              func(ctx context.Context, id string) (*Patient, error)
	ListFunc             func(ctx context.Context, search string) ([]Patient, error)
	SearchFunc           func(ctx context.Context, nationalCode, recordNumber string) (*Patient, error)
	UpdateFunc           func(ctx context.Context, id string, req Request) (*Patient, error)
	AdjustQuotaFunc      func(ctx context.Context, id string, req QuotaAdjustmentRequest) (*Patient, error)
	QuotaHistoryFunc     func(ctx context.Context, id string) ([]QuotaHistoryEntry, error)
	DeleteCompletelyFunc func(ctx context.Context, id string) error
}

func (m *mockService) Register(ctx context.Context, req Request) (*Patient, int, error) {
	return m.RegisterFunc(ctx, req)
}

func (m *mockService) Get(ctx context.Context, id string) (*Patient, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockService) List(ctx context.Context, search string) ([]Patient, error) {
	return m.ListFunc(ctx, search)
}

func (m *mockService) Search(ctx context.Context, nationalCode, recordNumber string) (*Patient, error) {
	return m.SearchFunc(ctx, nationalCode, recordNumber)
}

func (m *mockService) Update(ctx context.Context, id string, req Request) (*Patient, error) {
	return m.UpdateFunc(ctx, id, req)
}

func (m *mockService) AdjustQuota(ctx context.Context, id string, req QuotaAdjustmentRequest) (*Patient, error) {
	return m.AdjustQuotaFunc(ctx, id, req)
}

func (m *mockService) QuotaHistory(ctx context.Context, id string) ([]QuotaHistoryEntry, error) {
	return m.QuotaHistoryFunc(ctx, id)
}

func (m *mockService) DeleteCompletely(ctx context.Context, id string) error {
	return m.DeleteCompletelyFunc(ctx, id)
}

// TestRegisterHandler tests the created response with the remaining total
func TestRegisterHandler(t *testing.T) {
	mock := &mockService{
		RegisterFunc: func(ctx context.Context, req Request) (*Patient, int, error) {
			return &Patient{ID: "p1", FullName: req.FullName}, 9500, nil
		},
	}
	h := NewHandler(mock)

	body, _ := json.Marshal(validRequest())
	req := httptest.NewRequest("POST", "/api/patients", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var resp singleResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Expected decodable response, got: %v", err)
	}
	if !resp.Success || resp.Patient.ID != "p1" {
		t.Errorf("Expected success with patient p1, got %+v", resp)
	}
	if resp.RemainingQuota == nil || *resp.RemainingQuota != 9500 {
		t.Errorf("Expected remainingQuota 9500, got %v", resp.RemainingQuota)
	}
}

// TestRegisterHandler_InvalidJSON tests the malformed-body path
func TestRegisterHandler_InvalidJSON(t *testing.T) {
	h := NewHandler(&mockService{})

	req := httptest.NewRequest("POST", "/api/patients", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

// TestRegisterHandler_ErrorMapping tests the status code per error kind
func TestRegisterHandler_ErrorMapping(t *testing.T) {
	ve := &errs.ValidationError{}
	ve.Add("bad")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ve.Err(), http.StatusBadRequest},
		{"conflict", errs.Conflict("duplicate"), http.StatusBadRequest},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{
				RegisterFunc: func(ctx context.Context, req Request) (*Patient, int, error) {
					return nil, 0, tt.err
				},
			}
			h := NewHandler(mock)

			body, _ := json.Marshal(validRequest())
			req := httptest.NewRequest("POST", "/api/patients", bytes.NewReader(body))
			w := httptest.NewRecorder()
			h.Register(w, req)

			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}

			var resp map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Expected decodable response, got: %v", err)
			}
			if resp["success"] != false {
				t.Errorf("Expected success false, got %v", resp["success"])
			}
			if resp["error"] == "" {
				t.Error("Expected error message in body")
			}
		})
	}
}

// TestListHandler tests pagination over the returned list
func TestListHandler(t *testing.T) {
	patients := make([]Patient, 0, 25)
	for i := 0; i < 25; i++ {
		patients = append(patients, Patient{ID: "p", FullName: "بیمار"})
	}
	mock := &mockService{
		ListFunc: func(ctx context.Context, search string) ([]Patient, error) {
			return patients, nil
		},
	}
	h := NewHandler(mock)

	req := httptest.NewRequest("GET", "/api/patients?page=2&limit=10", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp listResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Expected decodable response, got: %v", err)
	}
	if len(resp.Patients) != 10 {
		t.Errorf("Expected 10 patients on page 2, got %d", len(resp.Patients))
	}
	if resp.Total != 25 {
		t.Errorf("Expected total 25, got %d", resp.Total)
	}
	if resp.Meta.TotalPages != 3 || !resp.Meta.HasNext || !resp.Meta.HasPrevious {
		t.Errorf("Expected full pagination meta, got %+v", resp.Meta)
	}
}

// TestGetHandler_NotFound tests the 404 mapping
func TestGetHandler_NotFound(t *testing.T) {
	mock := &mockService{
		GetFunc: func(ctx context.Context, id string) (*Patient, error) {
			return nil, errs.NotFound("patient %s not found", id)
		},
	}
	h := NewHandler(mock)

	r := mux.NewRouter()
	r.HandleFunc("/api/patients/{id}", h.Get)

	req := httptest.NewRequest("GET", "/api/patients/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// TestDeleteHandler tests the id forwarding and success message
func TestDeleteHandler(t *testing.T) {
	var deleted string
	mock := &mockService{
		DeleteCompletelyFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	h := NewHandler(mock)

	r := mux.NewRouter()
	r.HandleFunc("/api/patients/{id}", h.Delete).Methods("DELETE")

	req := httptest.NewRequest("DELETE", "/api/patients/p1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if deleted != "p1" {
		t.Errorf("Expected delete of p1, got %q", deleted)
	}
}
