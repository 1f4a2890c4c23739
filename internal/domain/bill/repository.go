package bill

import (
	"context"
	"time"
)

// Repository is implemented by the caller's persistence layer. UpdatePDF
// stores the rendered bytes together with their generation instant; the two
// are never written separately.
type Repository interface {
	Create(ctx context.Context, b *Bill) error
	Get(ctx context.Context, id uint64) (*Bill, error)
	List(ctx context.Context) ([]*Bill, error)
	UpdatePDF(ctx context.Context, id uint64, pdf []byte, createdAt time.Time) error
}
