package patient

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mehrclinic/records-service/internal/errs"
	"github.com/mehrclinic/records-service/internal/messaging"
	"github.com/mehrclinic/records-service/internal/store"
	"github.com/mehrclinic/records-service/internal/telemetry"
)

// Service is the patient registry. Every mutation cross-references the
// quota ledger so the clinic-wide totals track registered patients.
type Service struct {
	store     store.Store
	ledger    Ledger
	purger    DeliveryPurger
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
	now       func() time.Time
}

func NewService(st store.Store, ledger Ledger, purger DeliveryPurger, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{
		store:     st,
		ledger:    ledger,
		purger:    purger,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (s *Service) loadPatients(ctx context.Context) ([]Patient, error) {
	var list []Patient
	if err := s.store.Load(ctx, store.DocPatients, &list, []Patient{}); err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}
	return list, nil
}

func (s *Service) savePatients(ctx context.Context, list []Patient) error {
	if err := s.store.Save(ctx, store.DocPatients, list); err != nil {
		return fmt.Errorf("failed to save patients: %w", err)
	}
	return nil
}

// checkUnique fails with a conflict when another patient (excluding
// excludeID) already holds the national code or record number.
func checkUnique(list []Patient, nationalCode, recordNumber, excludeID string) error {
	for _, p := range list {
		if p.ID == excludeID {
			continue
		}
		if p.NationalCode == nationalCode {
			return errs.Conflict("a patient with national code %s is already registered", nationalCode)
		}
		if p.RecordNumber == recordNumber {
			return errs.Conflict("a patient with record number %s is already registered", recordNumber)
		}
	}
	return nil
}

// Register validates the payload, reserves the requested quota from the
// global ledger and persists the new patient. The remaining global total
// for the chosen drug is returned alongside the record.
func (s *Service) Register(ctx context.Context, req Request) (*Patient, int, error) {
	if err := validateRequest(req); err != nil {
		return nil, 0, err
	}

	list, err := s.loadPatients(ctx)
	if err != nil {
		return nil, 0, err
	}
	if err := checkUnique(list, req.NationalCode, req.RecordNumber, ""); err != nil {
		return nil, 0, err
	}

	remaining, err := s.ledger.Reserve(ctx, req.Drug, req.Quota)
	if err != nil {
		return nil, 0, err
	}

	p := Patient{
		ID:           uuid.New().String(),
		FullName:     req.FullName,
		NationalCode: req.NationalCode,
		BirthDate:    req.BirthDate,
		VisitDate:    req.VisitDate,
		RecordNumber: req.RecordNumber,
		Quota:        req.Quota,
		Drug:         req.Drug,
		CreatedAt:    s.now(),
	}
	list = append(list, p)

	// A failed save here leaves the quota reserved; there is no rollback
	// across documents.
	if err := s.savePatients(ctx, list); err != nil {
		return nil, 0, err
	}

	s.metrics.RecordPatientOperation(ctx, "register")
	s.publishEvent(ctx, messaging.EventPatientRegistered, &p)
	return &p, remaining, nil
}

// Get returns one patient by id.
func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	list, err := s.loadPatients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, errs.NotFound("patient %s not found", id)
}

// List returns patients matching the search term (substring over name,
// national code and record number; empty matches all).
func (s *Service) List(ctx context.Context, search string) ([]Patient, error) {
	list, err := s.loadPatients(ctx)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return list, nil
	}
	filtered := make([]Patient, 0, len(list))
	for _, p := range list {
		if strings.Contains(p.FullName, search) ||
			strings.Contains(p.NationalCode, search) ||
			strings.Contains(p.RecordNumber, search) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Search resolves a patient by exact national code or record number.
func (s *Service) Search(ctx context.Context, nationalCode, recordNumber string) (*Patient, error) {
	if nationalCode == "" && recordNumber == "" {
		ve := &errs.ValidationError{}
		ve.Add("nationalCode or recordNumber query parameter is required")
		return nil, ve
	}

	list, err := s.loadPatients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if nationalCode != "" && list[i].NationalCode == nationalCode {
			return &list[i], nil
		}
		if recordNumber != "" && list[i].RecordNumber == recordNumber {
			return &list[i], nil
		}
	}
	return nil, errs.NotFound("no patient matches the given identifiers")
}

// Update re-validates and replaces a patient record. A drug change releases
// the old drug's quota and reserves the new one; when the new reservation
// fails the release has already happened, which mirrors the stored
// documents having no cross-document transaction.
func (s *Service) Update(ctx context.Context, id string, req Request) (*Patient, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	list, err := s.loadPatients(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errs.NotFound("patient %s not found", id)
	}
	current := list[idx]

	if req.NationalCode != current.NationalCode || req.RecordNumber != current.RecordNumber {
		if err := checkUnique(list, req.NationalCode, req.RecordNumber, id); err != nil {
			return nil, err
		}
	}

	if req.Drug != current.Drug {
		if err := s.ledger.Release(ctx, current.Drug, current.Quota); err != nil {
			return nil, err
		}
		if _, err := s.ledger.Reserve(ctx, req.Drug, req.Quota); err != nil {
			return nil, err
		}
	}

	now := s.now()
	list[idx] = Patient{
		ID:           current.ID,
		FullName:     req.FullName,
		NationalCode: req.NationalCode,
		BirthDate:    req.BirthDate,
		VisitDate:    req.VisitDate,
		RecordNumber: req.RecordNumber,
		Quota:        req.Quota,
		Drug:         req.Drug,
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    &now,
	}

	if err := s.savePatients(ctx, list); err != nil {
		return nil, err
	}

	s.metrics.RecordPatientOperation(ctx, "update")
	s.publishEvent(ctx, messaging.EventPatientUpdated, &list[idx])
	return &list[idx], nil
}

// AdjustQuota changes a patient's own quota and appends an audit entry.
// A subtract means the usage is over: the amount flows back to the drug's
// global total. An add only raises the patient's allotment.
func (s *Service) AdjustQuota(ctx context.Context, id string, req QuotaAdjustmentRequest) (*Patient, error) {
	if err := validateQuotaAdjustment(req); err != nil {
		return nil, err
	}

	list, err := s.loadPatients(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errs.NotFound("patient %s not found", id)
	}
	p := &list[idx]

	if req.Operation == "subtract" {
		if req.Amount > p.Quota {
			ve := &errs.ValidationError{}
			ve.Add("amount %d exceeds the patient's quota %d", req.Amount, p.Quota)
			return nil, ve
		}
		p.Quota -= req.Amount
		if err := s.ledger.Release(ctx, p.Drug, req.Amount); err != nil {
			return nil, err
		}
	} else {
		p.Quota += req.Amount
	}
	now := s.now()
	p.UpdatedAt = &now

	if err := s.savePatients(ctx, list); err != nil {
		return nil, err
	}

	if err := s.appendHistory(ctx, QuotaHistoryEntry{
		PatientID:   p.ID,
		PatientName: p.FullName,
		Month:       req.Month,
		Date:        req.Date,
		Amount:      req.Amount,
		Operation:   req.Operation,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}

	s.metrics.RecordPatientOperation(ctx, "adjust_quota")
	return p, nil
}

func (s *Service) appendHistory(ctx context.Context, entry QuotaHistoryEntry) error {
	var history []QuotaHistoryEntry
	if err := s.store.Load(ctx, store.DocQuotaHistory, &history, []QuotaHistoryEntry{}); err != nil {
		return fmt.Errorf("failed to load quota history: %w", err)
	}
	history = append([]QuotaHistoryEntry{entry}, history...)
	if err := s.store.Save(ctx, store.DocQuotaHistory, history); err != nil {
		return fmt.Errorf("failed to save quota history: %w", err)
	}
	return nil
}

// QuotaHistory returns the patient's audit entries, newest first.
func (s *Service) QuotaHistory(ctx context.Context, id string) ([]QuotaHistoryEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var history []QuotaHistoryEntry
	if err := s.store.Load(ctx, store.DocQuotaHistory, &history, []QuotaHistoryEntry{}); err != nil {
		return nil, fmt.Errorf("failed to load quota history: %w", err)
	}

	entries := make([]QuotaHistoryEntry, 0)
	for _, e := range history {
		if e.PatientID == id {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// DeleteCompletely removes the patient, their deliveries and quota history,
// and restores their current quota to the drug's global total. Touched
// monthly reports are recomputed by the purger.
func (s *Service) DeleteCompletely(ctx context.Context, id string) error {
	list, err := s.loadPatients(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errs.NotFound("patient %s not found", id)
	}
	p := list[idx]

	list = append(list[:idx], list[idx+1:]...)
	if err := s.savePatients(ctx, list); err != nil {
		return err
	}

	removed, err := s.purger.PurgeByPatient(ctx, p.RecordNumber, p.NationalCode)
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Printf("[patient] purged %d deliveries for departed patient %s", removed, p.ID)
	}

	var history []QuotaHistoryEntry
	if err := s.store.Load(ctx, store.DocQuotaHistory, &history, []QuotaHistoryEntry{}); err != nil {
		return fmt.Errorf("failed to load quota history: %w", err)
	}
	kept := history[:0]
	for _, e := range history {
		if e.PatientID != p.ID {
			kept = append(kept, e)
		}
	}
	if len(kept) != len(history) {
		if err := s.store.Save(ctx, store.DocQuotaHistory, kept); err != nil {
			return fmt.Errorf("failed to save quota history: %w", err)
		}
	}

	if err := s.ledger.Release(ctx, p.Drug, p.Quota); err != nil {
		return err
	}

	s.metrics.RecordPatientOperation(ctx, "delete")
	s.publishEvent(ctx, messaging.EventPatientDeleted, &p)
	return nil
}

func (s *Service) publishEvent(ctx context.Context, eventType string, p *Patient) {
	if s.publisher == nil {
		return
	}
	event := messaging.PatientEvent{
		BaseEvent: messaging.NewBaseEvent(eventType, uuid.New().String()),
		Data: messaging.PatientEventData{
			PatientID:    p.ID,
			FullName:     p.FullName,
			NationalCode: p.NationalCode,
			RecordNumber: p.RecordNumber,
			Drug:         p.Drug,
			Quota:        p.Quota,
		},
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Printf("[patient] failed to publish %s event: %v", eventType, err)
	}
}
