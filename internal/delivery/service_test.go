package delivery

import (
	"context"
	"testing"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"

	"github.com/mehrclinic/records-service/internal/errs"
	"github.com/mehrclinic/records-service/internal/messaging"
	"github.com/mehrclinic/records-service/internal/store"
)

const (
	testSolid  = "قرص متادون 5"
	testLiquid = "شربت متادون"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.NewMemStore(), messaging.NopPublisher{}, nil)
}

func validRecord() RecordRequest {
	return RecordRequest{
		RecordNumber:   "1001",
		PatientName:    "علی رضایی",
		NationalCode:   "1234567890",
		Drugs:          []string{testSolid},
		DrugQuantities: map[string]int{testSolid: 20},
		Reason:         "مصرف هفتگی",
	}
}

// TestRecord_StampsDates tests server-side stamping of Persian and
// Gregorian date fields
func TestRecord_StampsDates(t *testing.T) {
	s := newTestService(t)
	fixed := time.Date(2025, time.September, 30, 14, 45, 0, 0, time.Local)
	s.now = func() time.Time { return fixed }

	d, err := s.Record(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	pt := ptime.New(fixed)
	if d.Month != pt.Month().String() {
		t.Errorf("Expected Persian month %q, got %q", pt.Month().String(), d.Month)
	}
	if d.PersianDate != pt.Format("yyyy/MM/dd") {
		t.Errorf("Expected Persian date %q, got %q", pt.Format("yyyy/MM/dd"), d.PersianDate)
	}
	if d.Year != 2025 || d.GregorianYear != 2025 {
		t.Errorf("Expected Gregorian year 2025, got year=%d gregorianYear=%d", d.Year, d.GregorianYear)
	}
	if d.GregorianMonth != 9 {
		t.Errorf("Expected Gregorian month 9, got %d", d.GregorianMonth)
	}
	if d.DeliveryTime != "14:45" {
		t.Errorf("Expected delivery time 14:45, got %q", d.DeliveryTime)
	}
	if d.ID == "" {
		t.Error("Expected generated id")
	}
}

// TestRecord_UpdatesMonthlyReport tests that a recorded delivery shows up
// in its month's report
func TestRecord_UpdatesMonthlyReport(t *testing.T) {
	s := newTestService(t)

	d, err := s.Record(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	report, err := s.MonthlyReport(context.Background(), d.Month, d.Year)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.Drugs[testSolid].Quantity != 20 {
		t.Errorf("Expected quantity 20, got %d", report.Drugs[testSolid].Quantity)
	}
	if report.Drugs[testSolid].Type != "unit" {
		t.Errorf("Expected type unit, got %q", report.Drugs[testSolid].Type)
	}
	if report.TotalUsed != 20 {
		t.Errorf("Expected totalUsed 20, got %d", report.TotalUsed)
	}
	if report.Remaining != MonthlyAllowance-20 {
		t.Errorf("Expected remaining %d, got %d", MonthlyAllowance-20, report.Remaining)
	}
	if report.Exceeded {
		t.Error("Expected exceeded false")
	}
}

// TestMonthlyReport_IgnoresStoredState tests that the report is always
// recomputed from the delivery log, never read back from the memo
func TestMonthlyReport_IgnoresStoredState(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	d, err := s.Record(ctx, validRecord())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Corrupt the stored memo; the next read must not trust it.
	bogus := []MonthlyReport{{Month: d.Month, Year: d.Year, TotalUsed: 9999}}
	if err := s.store.Save(ctx, store.DocMonthlyReports, bogus); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	report, err := s.MonthlyReport(ctx, d.Month, d.Year)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.TotalUsed != 20 {
		t.Errorf("Expected recomputed totalUsed 20, got %d", report.TotalUsed)
	}
}

// TestUpdate tests that changing a delivery's content reconciles the report
func TestUpdate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	d, err := s.Record(ctx, validRecord())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	updated, err := s.Update(ctx, d.ID, UpdateRequest{
		Drugs:          []string{testLiquid},
		DrugQuantities: map[string]int{testLiquid: 150},
		Reason:         "تغییر دارو",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if updated.UpdatedAt == nil {
		t.Error("Expected updatedAt to be stamped")
	}

	report, err := s.MonthlyReport(ctx, d.Month, d.Year)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.Drugs[testSolid].Quantity != 0 {
		t.Errorf("Expected old drug zeroed, got %d", report.Drugs[testSolid].Quantity)
	}
	if report.Drugs[testLiquid].Quantity != 150 {
		t.Errorf("Expected new drug at 150, got %d", report.Drugs[testLiquid].Quantity)
	}
	if report.TotalUsed != 150 {
		t.Errorf("Expected totalUsed 150, got %d", report.TotalUsed)
	}
}

// TestUpdate_NotFound tests the missing-id error path
func TestUpdate_NotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.Update(context.Background(), "nope", UpdateRequest{
		Drugs:          []string{testSolid},
		DrugQuantities: map[string]int{testSolid: 1},
		Reason:         "اصلاح",
	})
	if !errs.IsNotFound(err) {
		t.Errorf("Expected not-found error, got: %v", err)
	}
}

// TestValidation tests that delivery payload violations accumulate
func TestValidation(t *testing.T) {
	s := newTestService(t)

	_, err := s.Record(context.Background(), RecordRequest{
		Drugs:          []string{testLiquid, "نامعتبر"},
		DrugQuantities: map[string]int{testLiquid: 5000},
		Reason:         "ok",
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	ve, ok := err.(*errs.ValidationError)
	if !ok {
		t.Fatalf("Expected validation error, got: %v", err)
	}
	// missing record number, patient name, national code, short reason,
	// quantity map size mismatch, out-of-range liquid qty, unknown drug
	if len(ve.Violations) != 7 {
		t.Errorf("Expected 7 accumulated violations, got %d: %v", len(ve.Violations), ve.Violations)
	}
}

// TestValidation_ShortPersianReason tests that the reason length counts
// characters, not bytes
func TestValidation_ShortPersianReason(t *testing.T) {
	s := newTestService(t)

	req := validRecord()
	req.Reason = "اب"
	_, err := s.Record(context.Background(), req)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	ve, ok := err.(*errs.ValidationError)
	if !ok {
		t.Fatalf("Expected validation error, got: %v", err)
	}
	if len(ve.Violations) != 1 {
		t.Errorf("Expected 1 violation, got %d: %v", len(ve.Violations), ve.Violations)
	}

	// Three Persian characters clear the minimum.
	req.Reason = "درد"
	if _, err := s.Record(context.Background(), req); err != nil {
		t.Errorf("Expected no error for 3-character reason, got: %v", err)
	}
}

// TestPurgeByPatient tests removal of a patient's deliveries and report
// recomputation
func TestPurgeByPatient(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first, err := s.Record(ctx, validRecord())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	other := validRecord()
	other.RecordNumber = "2002"
	other.NationalCode = "0987654321"
	other.DrugQuantities = map[string]int{testSolid: 7}
	if _, err := s.Record(ctx, other); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	removed, err := s.PurgeByPatient(ctx, "1001", "1234567890")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed delivery, got %d", removed)
	}

	report, err := s.MonthlyReport(ctx, first.Month, first.Year)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.Drugs[testSolid].Quantity != 7 {
		t.Errorf("Expected remaining quantity 7, got %d", report.Drugs[testSolid].Quantity)
	}

	list, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(list) != 1 || list[0].RecordNumber != "2002" {
		t.Errorf("Expected only the other patient's delivery to remain, got %+v", list)
	}
}
