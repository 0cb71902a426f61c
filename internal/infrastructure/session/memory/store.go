package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

const DefaultTTL = 2 * time.Hour

// Store keeps workspaces in process memory. Every save refreshes the
// expiry; an idle workspace disappears after the TTL.
type Store struct {
	items *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	items := cache.New(ttl, ttl/2)
	items.OnEvicted(func(id string, _ any) {
		slog.Info("workspace_expired", "workspace_id", id)
	})
	return &Store{items: items}
}

func (s *Store) Create(_ context.Context, ws *domain.Workspace) error {
	if err := s.items.Add(ws.ID, ws.Clone(), cache.DefaultExpiration); err != nil {
		return domain.WrapError(domain.ErrConflict, "create workspace", err)
	}
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Workspace, error) {
	item, ok := s.items.Get(id)
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get workspace", fmt.Errorf("workspace %s", id))
	}
	return item.(*domain.Workspace).Clone(), nil
}

func (s *Store) Save(_ context.Context, ws *domain.Workspace) error {
	if err := s.items.Replace(ws.ID, ws.Clone(), cache.DefaultExpiration); err != nil {
		return domain.WrapError(domain.ErrNotFound, "save workspace", err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	if _, ok := s.items.Get(id); !ok {
		return domain.WrapError(domain.ErrNotFound, "delete workspace", fmt.Errorf("workspace %s", id))
	}
	s.items.Delete(id)
	return nil
}

// Count reports live workspaces, expired ones included until the next sweep.
func (s *Store) Count() int {
	return s.items.ItemCount()
}
