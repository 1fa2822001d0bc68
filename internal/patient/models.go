package patient

import "time"

// Patient is one registered patient record. nationalCode and recordNumber
// are unique across the registry.
type Patient struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	NationalCode string     `json:"nationalCode"`
	BirthDate    string     `json:"birthDate"`
	VisitDate    string     `json:"visitDate"`
	RecordNumber string     `json:"recordNumber"`
	Quota        int        `json:"quota"`
	Drug         string     `json:"drug"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// QuotaHistoryEntry is one append-only audit record of a patient quota
// change, newest first in the quota-history document.
type QuotaHistoryEntry struct {
	PatientID   string    `json:"patientId"`
	PatientName string    `json:"patientName"`
	Month       string    `json:"month"`
	Date        string    `json:"date"`
	Amount      int       `json:"amount"`
	Operation   string    `json:"operation"` // add | subtract
	CreatedAt   time.Time `json:"createdAt"`
}

// Request is the full-record payload used by both registration and update.
type Request struct {
	FullName     string `json:"fullName"`
	NationalCode string `json:"nationalCode"`
	BirthDate    string `json:"birthDate"`
	VisitDate    string `json:"visitDate"`
	RecordNumber string `json:"recordNumber"`
	Quota        int    `json:"quota"`
	Drug         string `json:"drug"`
}

// QuotaAdjustmentRequest is the payload of POST /api/patients/{id}/quota.
type QuotaAdjustmentRequest struct {
	Month     string `json:"month"`
	Date      string `json:"date"`
	Amount    int    `json:"amount"`
	Operation string `json:"operation"` // add | subtract
}
