package delivery

import (
	"unicode/utf8"

	"github.com/mehrclinic/records-service/internal/drug"
	"github.com/mehrclinic/records-service/internal/errs"
)

// validateContent checks the dispensed drugs, quantities and reason shared
// by record and update payloads. Every violation is collected so the caller
// sees all problems at once.
func validateContent(ve *errs.ValidationError, drugs []string, quantities map[string]int, reason string) {
	if len(drugs) == 0 {
		ve.Add("at least one drug must be selected")
	}
	if utf8.RuneCountInString(reason) < 3 {
		ve.Add("reason must be at least 3 characters")
	}
	if len(quantities) != len(drugs) {
		ve.Add("a quantity must be given for each selected drug")
	}

	for _, name := range drugs {
		d, ok := drug.Find(name)
		if !ok {
			ve.Add("drug %q is not in the configured drug list", name)
			continue
		}
		qty, ok := quantities[name]
		if !ok {
			ve.Add("missing quantity for %s", name)
			continue
		}
		if !d.ValidQuantity(qty) {
			if d.Kind == drug.Liquid {
				ve.Add("quantity for %s must be between 1 and 1000 cc", name)
			} else {
				ve.Add("quantity for %s must be at least 1 unit", name)
			}
		}
	}
}

func validateRecord(req RecordRequest) error {
	ve := &errs.ValidationError{}
	if req.RecordNumber == "" {
		ve.Add("record number is required")
	}
	if req.PatientName == "" {
		ve.Add("patient name is required")
	}
	if req.NationalCode == "" {
		ve.Add("national code is required")
	}
	validateContent(ve, req.Drugs, req.DrugQuantities, req.Reason)
	return ve.Err()
}

func validateUpdate(req UpdateRequest) error {
	ve := &errs.ValidationError{}
	validateContent(ve, req.Drugs, req.DrugQuantities, req.Reason)
	return ve.Err()
}
