package delivery

import "context"

// ServiceInterface defines the contract for delivery and report operations
type ServiceInterface interface {
	Record(ctx context.Context, req RecordRequest) (*Delivery, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Delivery, error)
	Get(ctx context.Context, id string) (*Delivery, error)
	List(ctx context.Context, recordNumber string) ([]Delivery, error)
	MonthlyReport(ctx context.Context, month string, year int) (*MonthlyReport, error)
	Recalc(ctx context.Context, month string, year int) error
	PurgeByPatient(ctx context.Context, recordNumber, nationalCode string) (int, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
