package notification

import "context"

// ServiceInterface defines the contract for notification operations
type ServiceInterface interface {
	List(ctx context.Context) ([]Notification, error)
	Create(ctx context.Context, req CreateRequest) (*Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
