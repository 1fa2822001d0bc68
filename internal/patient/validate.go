package patient

import (
	"unicode/utf8"

	"github.com/mehrclinic/records-service/internal/drug"
	"github.com/mehrclinic/records-service/internal/errs"
)

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateRequest checks a registration/update payload and reports every
// violation at once.
func validateRequest(req Request) error {
	ve := &errs.ValidationError{}

	if utf8.RuneCountInString(req.FullName) < 3 {
		ve.Add("full name must be at least 3 characters")
	}
	if len(req.NationalCode) != 10 || !isDigits(req.NationalCode) {
		ve.Add("national code must be exactly 10 digits")
	}
	if req.BirthDate == "" {
		ve.Add("birth date is required")
	}
	if req.VisitDate == "" {
		ve.Add("visit date is required")
	}
	if utf8.RuneCountInString(req.RecordNumber) < 3 {
		ve.Add("record number must be at least 3 characters")
	}
	if req.Quota <= 0 {
		ve.Add("quota must be a positive integer")
	}
	if !drug.Valid(req.Drug) {
		ve.Add("drug %q is not in the configured drug list", req.Drug)
	}

	return ve.Err()
}

func validateQuotaAdjustment(req QuotaAdjustmentRequest) error {
	ve := &errs.ValidationError{}

	if req.Operation != "add" && req.Operation != "subtract" {
		ve.Add("operation must be add or subtract")
	}
	if req.Amount <= 0 {
		ve.Add("amount must be a positive integer")
	}
	if req.Month == "" {
		ve.Add("month is required")
	}
	if req.Date == "" {
		ve.Add("date is required")
	}

	return ve.Err()
}
