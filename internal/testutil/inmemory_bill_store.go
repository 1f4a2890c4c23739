package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/fakturo/fakturo/internal/domain/bill"
	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/samber/lo"
)

// InMemoryBillStore implements bill.Repository
type InMemoryBillStore struct {
	mu    sync.RWMutex
	bills map[uint64]*bill.Bill
}

// NewInMemoryBillStore creates a new in-memory bill store
func NewInMemoryBillStore() *InMemoryBillStore {
	return &InMemoryBillStore{
		bills: make(map[uint64]*bill.Bill),
	}
}

func copyBill(b *bill.Bill) *bill.Bill {
	if b == nil {
		return nil
	}
	c := *b
	c.Items = append([]bill.BillItem(nil), b.Items...)
	c.PDFData = append([]byte(nil), b.PDFData...)
	if b.PDFCreatedAt != nil {
		c.PDFCreatedAt = lo.ToPtr(*b.PDFCreatedAt)
	}
	return &c
}

func (s *InMemoryBillStore) Create(ctx context.Context, b *bill.Bill) error {
	if b == nil {
		return ierr.NewError("bill cannot be nil").Mark(ierr.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[b.ID] = copyBill(b)
	return nil
}

func (s *InMemoryBillStore) Get(ctx context.Context, id uint64) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok {
		return nil, ierr.NewError("bill not found").
			WithHintf("No bill with id %d", id).
			Mark(ierr.ErrNotFound)
	}
	return copyBill(b), nil
}

func (s *InMemoryBillStore) List(ctx context.Context) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bills := lo.Map(lo.Values(s.bills), func(b *bill.Bill, _ int) *bill.Bill {
		return copyBill(b)
	})
	return bills, nil
}

func (s *InMemoryBillStore) UpdatePDF(ctx context.Context, id uint64, pdf []byte, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok {
		return ierr.NewError("bill not found").
			WithHintf("No bill with id %d", id).
			Mark(ierr.ErrNotFound)
	}
	b.PDFData = append([]byte(nil), pdf...)
	b.PDFCreatedAt = lo.ToPtr(createdAt)
	return nil
}
