package messaging

import "time"

// Event routing keys as constants
const (
	// Patient events
	EventPatientRegistered = "patient.registered"
	EventPatientUpdated    = "patient.updated"
	EventPatientDeleted    = "patient.deleted"

	// Delivery events
	EventDeliveryRecorded = "delivery.recorded"
	EventDeliveryUpdated  = "delivery.updated"

	// Quota events
	EventQuotaAdjusted = "quota.adjusted"
	EventQuotaLow      = "quota.low"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// NewBaseEvent fills the common envelope for eventType.
func NewBaseEvent(eventType, eventID string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     eventID,
		Timestamp:   time.Now().UTC(),
		ServiceName: "records-service",
	}
}

// PatientEvent covers registration, update and deletion of a patient.
type PatientEvent struct {
	BaseEvent
	Data PatientEventData `json:"data"`
}

type PatientEventData struct {
	PatientID    string `json:"patient_id"`
	FullName     string `json:"full_name"`
	NationalCode string `json:"national_code"`
	RecordNumber string `json:"record_number"`
	Drug         string `json:"drug"`
	Quota        int    `json:"quota"`
}

// DeliveryEvent is emitted when a drug delivery is recorded or changed.
type DeliveryEvent struct {
	BaseEvent
	Data DeliveryEventData `json:"data"`
}

type DeliveryEventData struct {
	DeliveryID   string         `json:"delivery_id"`
	RecordNumber string         `json:"record_number"`
	Drugs        []string       `json:"drugs"`
	Quantities   map[string]int `json:"quantities"`
	Month        string         `json:"month"`
	Year         int            `json:"year"`
}

// QuotaEvent is emitted on manual adjustments, top-ups and low-quota warnings.
type QuotaEvent struct {
	BaseEvent
	Data QuotaEventData `json:"data"`
}

type QuotaEventData struct {
	Drug          string `json:"drug"`
	Action        string `json:"action,omitempty"`
	Amount        int    `json:"amount,omitempty"`
	PreviousQuota int    `json:"previous_quota,omitempty"`
	NewQuota      int    `json:"new_quota"`
}
