package quota

import "context"

// ServiceInterface defines the contract for quota ledger operations
type ServiceInterface interface {
	Get(ctx context.Context) (GlobalQuota, error)
	Adjust(ctx context.Context, req AdjustRequest) (*DrugQuota, error)
	AddMonthlyTopUp(ctx context.Context, req TopUpRequest) (*DrugQuota, error)
	Reserve(ctx context.Context, drugName string, amount int) (int, error)
	Release(ctx context.Context, drugName string, amount int) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
