package pagination

import (
	"net/http/httptest"
	"testing"
)

// TestParseParams tests defaults, clamping and bad input
func TestParseParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", DefaultPage, DefaultLimit},
		{"explicit", "?page=3&limit=50", 3, 50},
		{"over max limit", "?limit=500", DefaultPage, MaxLimit},
		{"zero page ignored", "?page=0", DefaultPage, DefaultLimit},
		{"garbage ignored", "?page=abc&limit=xyz", DefaultPage, DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/patients"+tt.query, nil)
			p := ParseParams(r)
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
				t.Errorf("Expected page=%d limit=%d, got page=%d limit=%d",
					tt.wantPage, tt.wantLimit, p.Page, p.Limit)
			}
		})
	}
}

// TestSlice tests page bounds over an in-memory list
func TestSlice(t *testing.T) {
	tests := []struct {
		name   string
		page   int
		limit  int
		total  int
		wantLo int
		wantHi int
	}{
		{"first page", 1, 10, 25, 0, 10},
		{"middle page", 2, 10, 25, 10, 20},
		{"last partial page", 3, 10, 25, 20, 25},
		{"past the end", 5, 10, 25, 25, 25},
		{"empty list", 1, 10, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := Params{Page: tt.page, Limit: tt.limit}.Slice(tt.total)
			if lo != tt.wantLo || hi != tt.wantHi {
				t.Errorf("Expected [%d,%d), got [%d,%d)", tt.wantLo, tt.wantHi, lo, hi)
			}
		})
	}
}

// TestCalculateMeta tests page counting and next/previous flags
func TestCalculateMeta(t *testing.T) {
	m := Params{Page: 2, Limit: 10}.CalculateMeta(25)
	if m.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", m.TotalPages)
	}
	if !m.HasNext || !m.HasPrevious {
		t.Errorf("Expected both flags set, got next=%v previous=%v", m.HasNext, m.HasPrevious)
	}

	m = Params{Page: 1, Limit: 10}.CalculateMeta(0)
	if m.TotalPages != 1 {
		t.Errorf("Expected 1 page for empty set, got %d", m.TotalPages)
	}
	if m.HasNext || m.HasPrevious {
		t.Errorf("Expected no flags, got next=%v previous=%v", m.HasNext, m.HasPrevious)
	}
}
