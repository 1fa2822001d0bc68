package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// TestWorkbook tests that headers and rows land in the right cells
func TestWorkbook(t *testing.T) {
	b, err := Workbook("بیماران",
		[]string{"نام", "کد ملی", "سهمیه"},
		[][]interface{}{
			{"علی رضایی", "1234567890", 500},
			{"مریم حسینی", "0987654321", 300},
		})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("Expected workbook bytes")
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Expected readable workbook, got: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "بیماران" {
		t.Fatalf("Expected single sheet بیماران, got %v", sheets)
	}

	got, err := f.GetCellValue("بیماران", "A1")
	if err != nil || got != "نام" {
		t.Errorf("Expected header نام in A1, got %q (err %v)", got, err)
	}
	got, err = f.GetCellValue("بیماران", "B2")
	if err != nil || got != "1234567890" {
		t.Errorf("Expected 1234567890 in B2, got %q (err %v)", got, err)
	}
	got, err = f.GetCellValue("بیماران", "C3")
	if err != nil || got != "300" {
		t.Errorf("Expected 300 in C3, got %q (err %v)", got, err)
	}
}

// TestWorkbook_Empty tests a sheet with headers only
func TestWorkbook_Empty(t *testing.T) {
	b, err := Workbook("گزارش", []string{"ماه", "مصرف"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Expected readable workbook, got: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("گزارش")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Expected only the header row, got %d rows", len(rows))
	}
}
