package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mehrclinic/records-service/internal/errs"
	"github.com/mehrclinic/records-service/internal/store"
)

// Notification is one entry of the operator notification feed, newest first.
type Notification struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
}

// CreateRequest is the payload of POST /api/notifications.
type CreateRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func (s *Service) load(ctx context.Context) ([]Notification, error) {
	var list []Notification
	if err := s.store.Load(ctx, store.DocNotifications, &list, []Notification{}); err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return list, nil
}

// List returns all notifications, newest first.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	return s.load(ctx)
}

// Create prepends a new unread notification.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Notification, error) {
	ve := &errs.ValidationError{}
	if req.Title == "" {
		ve.Add("title is required")
	}
	if req.Message == "" {
		ve.Add("message is required")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	n := Notification{
		ID:      uuid.New().String(),
		Title:   req.Title,
		Message: req.Message,
		Date:    s.now(),
	}
	list = append([]Notification{n}, list...)

	if err := s.store.Save(ctx, store.DocNotifications, list); err != nil {
		return nil, fmt.Errorf("failed to save notifications: %w", err)
	}
	return &n, nil
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id string) (*Notification, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			if err := s.store.Save(ctx, store.DocNotifications, list); err != nil {
				return nil, fmt.Errorf("failed to save notifications: %w", err)
			}
			return &list[i], nil
		}
	}
	return nil, errs.NotFound("notification %s not found", id)
}

// Notify implements the quota ledger's Notifier contract.
func (s *Service) Notify(ctx context.Context, title, message string) error {
	_, err := s.Create(ctx, CreateRequest{Title: title, Message: message})
	return err
}
