package testutil

import (
	"context"

	"github.com/fakturo/fakturo/internal/domain/bill"
	"github.com/fakturo/fakturo/internal/domain/client"
	"github.com/fakturo/fakturo/internal/pdf"
	"github.com/stretchr/testify/mock"
)

var _ pdf.Generator = (*MockPDFGenerator)(nil)

// MockPDFGenerator is a mock implementation of pdf.Generator
type MockPDFGenerator struct {
	mock.Mock
}

func NewMockPDFGenerator() *MockPDFGenerator {
	return &MockPDFGenerator{}
}

// GenerateInvoicePdf implements pdf.Generator.
func (m *MockPDFGenerator) GenerateInvoicePdf(ctx context.Context, b *bill.Bill, c *client.Client, creditor client.Address) (*pdf.Result, error) {
	args := m.Called(ctx, b, c, creditor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdf.Result), args.Error(1)
}
