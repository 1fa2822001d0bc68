package patient

import "context"

// ServiceInterface defines the contract for patient registry operations
type ServiceInterface interface {
	Register(ctx context.Context, req Request) (*Patient, int, error)
	Get(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context, search string) ([]Patient, error)
	Search(ctx context.Context, nationalCode, recordNumber string) (*Patient, error)
	Update(ctx context.Context, id string, req Request) (*Patient, error)
	AdjustQuota(ctx context.Context, id string, req QuotaAdjustmentRequest) (*Patient, error)
	QuotaHistory(ctx context.Context, id string) ([]QuotaHistoryEntry, error)
	DeleteCompletely(ctx context.Context, id string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
