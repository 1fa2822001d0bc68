package notification

import (
	"context"
	"testing"

	"github.com/mehrclinic/records-service/internal/errs"
	"github.com/mehrclinic/records-service/internal/store"
)

// TestCreateAndList tests that notifications come back newest first
func TestCreateAndList(t *testing.T) {
	s := NewService(store.NewMemStore())
	ctx := context.Background()

	if _, err := s.Create(ctx, CreateRequest{Title: "اول", Message: "پیام اول"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, err := s.Create(ctx, CreateRequest{Title: "دوم", Message: "پیام دوم"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(list))
	}
	if list[0].Title != "دوم" {
		t.Errorf("Expected newest first, got %q", list[0].Title)
	}
	if list[0].Read {
		t.Error("Expected new notification to be unread")
	}
}

// TestCreate_Validation tests the empty-payload rejection
func TestCreate_Validation(t *testing.T) {
	s := NewService(store.NewMemStore())

	_, err := s.Create(context.Background(), CreateRequest{})
	if !errs.IsValidation(err) {
		t.Fatalf("Expected validation error, got: %v", err)
	}
	ve := err.(*errs.ValidationError)
	if len(ve.Violations) != 2 {
		t.Errorf("Expected 2 violations, got %d", len(ve.Violations))
	}
}

// TestMarkRead tests flagging one entry and the missing-id path
func TestMarkRead(t *testing.T) {
	s := NewService(store.NewMemStore())
	ctx := context.Background()

	n, err := s.Create(ctx, CreateRequest{Title: "هشدار", Message: "سهمیه کم است"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	read, err := s.MarkRead(ctx, n.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !read.Read {
		t.Error("Expected notification marked read")
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !list[0].Read {
		t.Error("Expected read flag persisted")
	}

	if _, err := s.MarkRead(ctx, "nope"); !errs.IsNotFound(err) {
		t.Errorf("Expected not-found, got: %v", err)
	}
}

// TestNotify tests the ledger-facing helper
func TestNotify(t *testing.T) {
	s := NewService(store.NewMemStore())
	ctx := context.Background()

	if err := s.Notify(ctx, "هشدار سهمیه", "موجودی کم است"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(list) != 1 || list[0].Title != "هشدار سهمیه" {
		t.Errorf("Expected one notification from Notify, got %+v", list)
	}
}
