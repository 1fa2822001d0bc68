package patient

import "context"

// Ledger is the slice of the quota ledger the registry depends on.
// Reserve and Release are called in pairs across a patient's lifetime so
// the global total balances when the patient departs.
type Ledger interface {
	Reserve(ctx context.Context, drugName string, amount int) (int, error)
	Release(ctx context.Context, drugName string, amount int) error
}

// DeliveryPurger removes a departed patient's deliveries and keeps the
// monthly reports consistent with what remains.
type DeliveryPurger interface {
	PurgeByPatient(ctx context.Context, recordNumber, nationalCode string) (int, error)
}
