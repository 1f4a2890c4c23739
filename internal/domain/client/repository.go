package client

import "context"

// Repository is implemented by the caller's persistence layer.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	Get(ctx context.Context, id uint64) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
}
