package delivery

import "time"

// Delivery is one dispensing event. Date fields are stamped server-side at
// record time: the Persian calendar month name plus the Gregorian year form
// the monthly report key, and the Gregorian month/year are kept alongside.
type Delivery struct {
	ID             string         `json:"id"`
	RecordNumber   string         `json:"recordNumber"`
	PatientName    string         `json:"patientName"`
	NationalCode   string         `json:"nationalCode"`
	Drugs          []string       `json:"drugs"`
	DrugQuantities map[string]int `json:"drugQuantities"`
	Reason         string         `json:"reason"`
	DeliveryDate   time.Time      `json:"deliveryDate"`
	PersianDate    string         `json:"persianDate"`
	Month          string         `json:"month"`
	Year           int            `json:"year"`
	GregorianMonth int            `json:"gregorianMonth"`
	GregorianYear  int            `json:"gregorianYear"`
	DeliveryTime   string         `json:"deliveryTime"`
	UpdatedAt      *time.Time     `json:"updatedAt,omitempty"`
}

// DrugUsage is the aggregated dispensed quantity of one drug in a month.
type DrugUsage struct {
	Quantity int    `json:"quantity"`
	Type     string `json:"type"` // cc | unit
}

// MonthlyReport is the per-(month, year) usage view, derived entirely from
// the delivery log. The stored copy is a refreshed memo, never an input.
type MonthlyReport struct {
	Month     string               `json:"month"`
	Year      int                  `json:"year"`
	Drugs     map[string]DrugUsage `json:"drugs"`
	TotalUsed int                  `json:"totalUsed"`
	Remaining int                  `json:"remaining"`
	Exceeded  bool                 `json:"exceeded"`
}

// RecordRequest is the payload of POST /api/drug-delivery.
type RecordRequest struct {
	RecordNumber   string         `json:"recordNumber"`
	PatientName    string         `json:"patientName"`
	NationalCode   string         `json:"nationalCode"`
	Drugs          []string       `json:"drugs"`
	DrugQuantities map[string]int `json:"drugQuantities"`
	Reason         string         `json:"reason"`
}

// UpdateRequest is the payload of PUT /api/drug-delivery/{id}. Identity and
// date stamps are immutable; only the dispensed content may change.
type UpdateRequest struct {
	Drugs          []string       `json:"drugs"`
	DrugQuantities map[string]int `json:"drugQuantities"`
	Reason         string         `json:"reason"`
}
