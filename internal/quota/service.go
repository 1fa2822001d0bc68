package quota

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mehrclinic/records-service/internal/drug"
	"github.com/mehrclinic/records-service/internal/errs"
	"github.com/mehrclinic/records-service/internal/messaging"
	"github.com/mehrclinic/records-service/internal/store"
	"github.com/mehrclinic/records-service/internal/telemetry"
)

// Notifier posts an operator-visible notification. Implemented by the
// notification service.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Service is the quota ledger: it owns the global-quota document and every
// change to a drug's clinic-wide total.
type Service struct {
	store     store.Store
	notifier  Notifier
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
	threshold int
	now       func() time.Time
}

func NewService(st store.Store, notifier Notifier, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	threshold := DefaultWarningThreshold
	if s := os.Getenv("QUOTA_WARNING_THRESHOLD"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			threshold = n
		}
	}
	return &Service{
		store:     st,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
		threshold: threshold,
		now:       time.Now,
	}
}

// load reads the global-quota document, ensures every catalog drug has an
// entry and applies the monthly reset rule, persisting when anything
// changed.
func (s *Service) load(ctx context.Context) (GlobalQuota, error) {
	g := GlobalQuota{}
	if err := s.store.Load(ctx, store.DocGlobalQuota, &g, GlobalQuota{}); err != nil {
		return nil, fmt.Errorf("failed to load global quota: %w", err)
	}
	if s.applyMonthlyReset(g) {
		if err := s.save(ctx, g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (s *Service) save(ctx context.Context, g GlobalQuota) error {
	if err := s.store.Save(ctx, store.DocGlobalQuota, g); err != nil {
		return fmt.Errorf("failed to save global quota: %w", err)
	}
	return nil
}

// applyMonthlyReset lazily creates missing entries and, for every drug whose
// last update falls in a previous calendar month, resets the total to the
// monthly default, clears the warning flag and prunes expired top-ups.
// Unexpired top-up entries stay listed but are not re-applied to the total.
func (s *Service) applyMonthlyReset(g GlobalQuota) bool {
	now := s.now()
	changed := false

	for _, name := range drug.Names() {
		entry, ok := g[name]
		if !ok {
			g[name] = &DrugQuota{
				TotalQuota:        DefaultMonthlyQuota,
				LastUpdated:       now,
				MonthlyQuotas:     []MonthlyQuota{},
				ManualAdjustments: []ManualAdjustment{},
			}
			changed = true
			continue
		}

		if entry.LastUpdated.Year() == now.Year() && entry.LastUpdated.Month() == now.Month() {
			continue
		}

		entry.TotalQuota = DefaultMonthlyQuota
		entry.WarningSent = false
		entry.LastUpdated = now

		kept := entry.MonthlyQuotas[:0]
		for _, mq := range entry.MonthlyQuotas {
			if mq.ExpiresAt.After(now) {
				kept = append(kept, mq)
			}
		}
		entry.MonthlyQuotas = kept
		changed = true
		log.Printf("[quota] monthly reset applied for %s", name)
	}
	return changed
}

// Get returns the full ledger after applying the monthly reset rule.
func (s *Service) Get(ctx context.Context) (GlobalQuota, error) {
	return s.load(ctx)
}

// Adjust applies a manual add/subtract/set to one drug's total and records
// the change in its adjustment history.
func (s *Service) Adjust(ctx context.Context, req AdjustRequest) (*DrugQuota, error) {
	ve := &errs.ValidationError{}
	if !drug.Valid(req.Drug) {
		ve.Add("drug %q is not in the configured drug list", req.Drug)
	}
	if req.Action != "add" && req.Action != "subtract" && req.Action != "set" {
		ve.Add("action must be one of add, subtract or set")
	}
	if req.Amount < 0 {
		ve.Add("amount must not be negative")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	g, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	entry := g[req.Drug]
	prev := entry.TotalQuota

	next := prev
	switch req.Action {
	case "add":
		next = prev + req.Amount
	case "subtract":
		next = prev - req.Amount
	case "set":
		next = req.Amount
	}
	if next < 0 {
		ve.Add("adjustment would make %s quota negative (current %d, amount %d)", req.Drug, prev, req.Amount)
		return nil, ve
	}

	entry.TotalQuota = next
	entry.LastUpdated = s.now()
	entry.ManualAdjustments = append([]ManualAdjustment{{
		Date:          s.now(),
		Action:        req.Action,
		Amount:        req.Amount,
		Description:   req.Description,
		PreviousQuota: prev,
		NewQuota:      next,
	}}, entry.ManualAdjustments...)

	if err := s.save(ctx, g); err != nil {
		return nil, err
	}

	s.metrics.RecordQuotaOperation(ctx, req.Drug, req.Action)
	s.publishQuotaEvent(ctx, messaging.EventQuotaAdjusted, req.Drug, req.Action, req.Amount, prev, next)
	return entry, nil
}

// AddMonthlyTopUp appends a top-up with a computed expiry and increases the
// drug's total immediately.
func (s *Service) AddMonthlyTopUp(ctx context.Context, req TopUpRequest) (*DrugQuota, error) {
	ve := &errs.ValidationError{}
	if !drug.Valid(req.Drug) {
		ve.Add("drug %q is not in the configured drug list", req.Drug)
	}
	if req.Month == "" {
		ve.Add("month is required")
	}
	if req.Amount <= 0 {
		ve.Add("amount must be a positive integer")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	expiryDays := req.ExpiryDays
	if expiryDays <= 0 {
		expiryDays = DefaultTopUpExpiryDays
	}

	g, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	entry := g[req.Drug]
	prev := entry.TotalQuota

	now := s.now()
	entry.MonthlyQuotas = append([]MonthlyQuota{{
		Month:      req.Month,
		Amount:     req.Amount,
		ExpiryDays: expiryDays,
		AddedAt:    now,
		ExpiresAt:  now.AddDate(0, 0, expiryDays),
	}}, entry.MonthlyQuotas...)
	entry.TotalQuota += req.Amount
	entry.LastUpdated = now

	if err := s.save(ctx, g); err != nil {
		return nil, err
	}

	s.metrics.RecordQuotaOperation(ctx, req.Drug, "topup")
	s.publishQuotaEvent(ctx, messaging.EventQuotaAdjusted, req.Drug, "topup", req.Amount, prev, entry.TotalQuota)
	return entry, nil
}

// Reserve deducts amount from drugName's total on behalf of a patient
// registration. It fails without touching the ledger when the remaining
// total is insufficient.
func (s *Service) Reserve(ctx context.Context, drugName string, amount int) (int, error) {
	if !drug.Valid(drugName) {
		ve := &errs.ValidationError{}
		ve.Add("drug %q is not in the configured drug list", drugName)
		return 0, ve
	}

	g, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	entry := g[drugName]

	if amount > entry.TotalQuota {
		return 0, errs.Conflict("insufficient quota for %s: requested %d, remaining %d",
			drugName, amount, entry.TotalQuota)
	}

	entry.TotalQuota -= amount
	entry.LastUpdated = s.now()
	s.checkWarning(ctx, drugName, entry)

	if err := s.save(ctx, g); err != nil {
		return 0, err
	}

	s.metrics.RecordQuotaOperation(ctx, drugName, "reserve")
	return entry.TotalQuota, nil
}

// Release returns amount to drugName's total. Paired with Reserve across a
// patient's lifetime so the ledger balances when the patient departs.
func (s *Service) Release(ctx context.Context, drugName string, amount int) error {
	g, err := s.load(ctx)
	if err != nil {
		return err
	}
	entry, ok := g[drugName]
	if !ok {
		// Drug no longer configured; nothing to restore to.
		log.Printf("[quota] release skipped for unknown drug %q", drugName)
		return nil
	}

	entry.TotalQuota += amount
	entry.LastUpdated = s.now()

	if err := s.save(ctx, g); err != nil {
		return err
	}

	s.metrics.RecordQuotaOperation(ctx, drugName, "release")
	return nil
}

// checkWarning fires the low-quota notification once per month per drug.
func (s *Service) checkWarning(ctx context.Context, drugName string, entry *DrugQuota) {
	if entry.WarningSent || entry.TotalQuota >= s.threshold {
		return
	}
	entry.WarningSent = true

	if s.notifier != nil {
		msg := fmt.Sprintf("سهمیه %s به %d رسید", drugName, entry.TotalQuota)
		if err := s.notifier.Notify(ctx, "هشدار سهمیه", msg); err != nil {
			log.Printf("[quota] failed to create low-quota notification: %v", err)
		}
	}
	s.publishQuotaEvent(ctx, messaging.EventQuotaLow, drugName, "", 0, 0, entry.TotalQuota)
}

func (s *Service) publishQuotaEvent(ctx context.Context, eventType, drugName, action string, amount, prev, next int) {
	if s.publisher == nil {
		return
	}
	event := messaging.QuotaEvent{
		BaseEvent: messaging.NewBaseEvent(eventType, uuid.New().String()),
		Data: messaging.QuotaEventData{
			Drug:          drugName,
			Action:        action,
			Amount:        amount,
			PreviousQuota: prev,
			NewQuota:      next,
		},
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Printf("[quota] failed to publish %s event: %v", eventType, err)
	}
}
