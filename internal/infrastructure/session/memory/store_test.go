package memory

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

func TestStoreReturnsIndependentCopies(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	ws := &domain.Workspace{ID: "w1", Tags: []domain.Tag{{ID: "t1", Name: "A", Quotes: []string{"q"}}}}
	if err := s.Create(ctx, ws); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	ws.Tags[0].Quotes[0] = "mutated by caller"

	got, err := s.Get(ctx, "w1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Tags[0].Quotes[0] != "q" {
		t.Fatalf("store shares memory with caller: %q", got.Tags[0].Quotes[0])
	}

	got.Tags[0].Name = "changed"
	again, _ := s.Get(ctx, "w1")
	if again.Tags[0].Name != "A" {
		t.Fatalf("Get returned a shared value")
	}
}

func TestStoreCreateDuplicateIsConflict(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	if err := s.Create(ctx, &domain.Workspace{ID: "w1"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Create(ctx, &domain.Workspace{ID: "w1"}); !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStoreMissingWorkspace(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	if _, err := s.Get(ctx, "nope"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("Get: expected not found, got %v", err)
	}
	if err := s.Save(ctx, &domain.Workspace{ID: "nope"}); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("Save: expected not found, got %v", err)
	}
	if err := s.Delete(ctx, "nope"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("Delete: expected not found, got %v", err)
	}
}

func TestStoreExpiresIdleWorkspaces(t *testing.T) {
	s := NewStore(20 * time.Millisecond)
	ctx := context.Background()

	if err := s.Create(ctx, &domain.Workspace{ID: "w1"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := s.Get(ctx, "w1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected expired workspace, got %v", err)
	}
}
