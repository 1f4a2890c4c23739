package testutil

import (
	"context"
	"sync"

	"github.com/fakturo/fakturo/internal/domain/client"
	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/samber/lo"
)

// InMemoryClientStore implements client.Repository
type InMemoryClientStore struct {
	mu      sync.RWMutex
	clients map[uint64]*client.Client
}

// NewInMemoryClientStore creates a new in-memory client store
func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{
		clients: make(map[uint64]*client.Client),
	}
}

func copyClient(c *client.Client) *client.Client {
	if c == nil {
		return nil
	}
	cp := *c
	if c.BillingAddress != nil {
		cp.BillingAddress = lo.ToPtr(*c.BillingAddress)
	}
	return &cp
}

func (s *InMemoryClientStore) Create(ctx context.Context, c *client.Client) error {
	if c == nil {
		return ierr.NewError("client cannot be nil").Mark(ierr.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = copyClient(c)
	return nil
}

func (s *InMemoryClientStore) Get(ctx context.Context, id uint64) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, ierr.NewError("client not found").
			WithHintf("No client with id %d", id).
			Mark(ierr.ErrNotFound)
	}
	return copyClient(c), nil
}

func (s *InMemoryClientStore) List(ctx context.Context) ([]*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clients := lo.Map(lo.Values(s.clients), func(c *client.Client, _ int) *client.Client {
		return copyClient(c)
	})
	return clients, nil
}
