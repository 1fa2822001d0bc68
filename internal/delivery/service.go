package delivery

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	ptime "github.com/yaa110/go-persian-calendar"

	"github.com/mehrclinic/records-service/internal/drug"
	"github.com/mehrclinic/records-service/internal/errs"
	"github.com/mehrclinic/records-service/internal/messaging"
	"github.com/mehrclinic/records-service/internal/store"
	"github.com/mehrclinic/records-service/internal/telemetry"
)

// MonthlyAllowance is the reference allotment a month's usage is reported
// against.
const MonthlyAllowance = 10000

// Service owns the drug-delivery log and the monthly usage reports derived
// from it.
type Service struct {
	store     store.Store
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
	now       func() time.Time
}

func NewService(st store.Store, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{store: st, publisher: publisher, metrics: metrics, now: time.Now}
}

func (s *Service) loadDeliveries(ctx context.Context) ([]Delivery, error) {
	var list []Delivery
	if err := s.store.Load(ctx, store.DocDeliveries, &list, []Delivery{}); err != nil {
		return nil, fmt.Errorf("failed to load deliveries: %w", err)
	}
	return list, nil
}

func (s *Service) saveDeliveries(ctx context.Context, list []Delivery) error {
	if err := s.store.Save(ctx, store.DocDeliveries, list); err != nil {
		return fmt.Errorf("failed to save deliveries: %w", err)
	}
	return nil
}

// Record validates and stamps a new delivery, appends it to the log and
// refreshes the report memo of its (month, year).
func (s *Service) Record(ctx context.Context, req RecordRequest) (*Delivery, error) {
	if err := validateRecord(req); err != nil {
		return nil, err
	}

	now := s.now()
	pt := ptime.New(now)

	d := Delivery{
		ID:             uuid.New().String(),
		RecordNumber:   req.RecordNumber,
		PatientName:    req.PatientName,
		NationalCode:   req.NationalCode,
		Drugs:          req.Drugs,
		DrugQuantities: req.DrugQuantities,
		Reason:         req.Reason,
		DeliveryDate:   now,
		PersianDate:    pt.Format("yyyy/MM/dd"),
		Month:          pt.Month().String(),
		Year:           now.Year(),
		GregorianMonth: int(now.Month()),
		GregorianYear:  now.Year(),
		DeliveryTime:   now.Format("15:04"),
	}

	list, err := s.loadDeliveries(ctx)
	if err != nil {
		return nil, err
	}
	list = append(list, d)
	if err := s.saveDeliveries(ctx, list); err != nil {
		return nil, err
	}

	if err := s.Recalc(ctx, d.Month, d.Year); err != nil {
		log.Printf("[delivery] failed to refresh report for %s %d: %v", d.Month, d.Year, err)
	}

	s.metrics.RecordDeliveryOperation(ctx, "record")
	s.publishEvent(ctx, messaging.EventDeliveryRecorded, &d)
	return &d, nil
}

// Update replaces the dispensed content of an existing delivery and
// refreshes the report of its (month, year).
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Delivery, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	list, err := s.loadDeliveries(ctx)
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
		return nil, errs.NotFound("delivery %s not found", id)
	}

	now := s.now()
	list[idx].Drugs = req.Drugs
	list[idx].DrugQuantities = req.DrugQuantities
	list[idx].Reason = req.Reason
	list[idx].UpdatedAt = &now

	if err := s.saveDeliveries(ctx, list); err != nil {
		return nil, err
	}

	if err := s.Recalc(ctx, list[idx].Month, list[idx].Year); err != nil {
		log.Printf("[delivery] failed to refresh report for %s %d: %v", list[idx].Month, list[idx].Year, err)
	}

	s.metrics.RecordDeliveryOperation(ctx, "update")
	s.publishEvent(ctx, messaging.EventDeliveryUpdated, &list[idx])
	return &list[idx], nil
}

// Get returns one delivery by id.
func (s *Service) Get(ctx context.Context, id string) (*Delivery, error) {
	list, err := s.loadDeliveries(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, errs.NotFound("delivery %s not found", id)
}

// List returns the whole delivery log, optionally filtered by record number.
func (s *Service) List(ctx context.Context, recordNumber string) ([]Delivery, error) {
	list, err := s.loadDeliveries(ctx)
	if err != nil {
		return nil, err
	}
	if recordNumber == "" {
		return list, nil
	}
	filtered := make([]Delivery, 0, len(list))
	for _, d := range list {
		if d.RecordNumber == recordNumber {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// computeReport builds the usage view for one (month, year) purely from the
// delivery log. Every catalog drug appears, zero-valued when unused.
func computeReport(list []Delivery, month string, year int) *MonthlyReport {
	report := &MonthlyReport{
		Month: month,
		Year:  year,
		Drugs: make(map[string]DrugUsage, len(drug.Catalog)),
	}
	for _, d := range drug.Catalog {
		report.Drugs[d.Name] = DrugUsage{Type: string(d.Kind)}
	}

	for _, del := range list {
		if del.Month != month || del.Year != year {
			continue
		}
		for name, qty := range del.DrugQuantities {
			usage := report.Drugs[name]
			if usage.Type == "" {
				// Delivery of a drug later removed from the catalog.
				if d, ok := drug.Find(name); ok {
					usage.Type = string(d.Kind)
				} else {
					usage.Type = string(drug.Solid)
				}
			}
			usage.Quantity += qty
			report.Drugs[name] = usage
			report.TotalUsed += qty
		}
	}

	report.Remaining = MonthlyAllowance - report.TotalUsed
	if report.Remaining < 0 {
		report.Remaining = 0
	}
	report.Exceeded = report.TotalUsed > MonthlyAllowance
	return report
}

// MonthlyReport recomputes the report for (month, year) from the delivery
// log, refreshes the stored memo and returns it. The stored copy is never
// trusted as input.
func (s *Service) MonthlyReport(ctx context.Context, month string, year int) (*MonthlyReport, error) {
	if month == "" || year <= 0 {
		ve := &errs.ValidationError{}
		if month == "" {
			ve.Add("month is required")
		}
		if year <= 0 {
			ve.Add("year must be a positive integer")
		}
		return nil, ve
	}

	list, err := s.loadDeliveries(ctx)
	if err != nil {
		return nil, err
	}
	report := computeReport(list, month, year)

	if err := s.storeReport(ctx, report); err != nil {
		log.Printf("[delivery] failed to store report memo for %s %d: %v", month, year, err)
	}
	return report, nil
}

// Recalc refreshes the stored report of one (month, year). Used after
// deliveries are removed or changed.
func (s *Service) Recalc(ctx context.Context, month string, year int) error {
	_, err := s.MonthlyReport(ctx, month, year)
	return err
}

func (s *Service) storeReport(ctx context.Context, report *MonthlyReport) error {
	var reports []MonthlyReport
	if err := s.store.Load(ctx, store.DocMonthlyReports, &reports, []MonthlyReport{}); err != nil {
		return err
	}

	replaced := false
	for i := range reports {
		if reports[i].Month == report.Month && reports[i].Year == report.Year {
			reports[i] = *report
			replaced = true
			break
		}
	}
	if !replaced {
		reports = append(reports, *report)
	}
	return s.store.Save(ctx, store.DocMonthlyReports, reports)
}

// PurgeByPatient removes every delivery matching the patient's record number
// or national code and recomputes the report of each touched (month, year).
// It returns the number of removed deliveries.
func (s *Service) PurgeByPatient(ctx context.Context, recordNumber, nationalCode string) (int, error) {
	list, err := s.loadDeliveries(ctx)
	if err != nil {
		return 0, err
	}

	type key struct {
		month string
		year  int
	}
	touched := map[key]struct{}{}

	kept := make([]Delivery, 0, len(list))
	for _, d := range list {
		if d.RecordNumber == recordNumber || d.NationalCode == nationalCode {
			touched[key{d.Month, d.Year}] = struct{}{}
			continue
		}
		kept = append(kept, d)
	}

	removed := len(list) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := s.saveDeliveries(ctx, kept); err != nil {
		return 0, err
	}
	for k := range touched {
		if err := s.Recalc(ctx, k.month, k.year); err != nil {
			return removed, err
		}
	}

	s.metrics.RecordDeliveryOperation(ctx, "purge")
	return removed, nil
}

func (s *Service) publishEvent(ctx context.Context, eventType string, d *Delivery) {
	if s.publisher == nil {
		return
	}
	event := messaging.DeliveryEvent{
		BaseEvent: messaging.NewBaseEvent(eventType, uuid.New().String()),
		Data: messaging.DeliveryEventData{
			DeliveryID:   d.ID,
			RecordNumber: d.RecordNumber,
			Drugs:        d.Drugs,
			Quantities:   d.DrugQuantities,
			Month:        d.Month,
			Year:         d.Year,
		},
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Printf("[delivery] failed to publish %s event: %v", eventType, err)
	}
}
