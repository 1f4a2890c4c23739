package service

import (
	"context"

	"github.com/fakturo/fakturo/internal/config"
	"github.com/fakturo/fakturo/internal/domain/bill"
	"github.com/fakturo/fakturo/internal/domain/client"
	"github.com/fakturo/fakturo/internal/logger"
	"github.com/fakturo/fakturo/internal/pdf"
	"github.com/samber/lo"
)

// InvoiceService ties the generation pipeline to the persistence handback:
// it fetches the bill and its client, generates the PDF and stores the
// bytes together with their generation instant.
type InvoiceService interface {
	GenerateAndStorePdf(ctx context.Context, billID uint64) (*bill.Bill, error)
}

type invoiceService struct {
	billRepo   bill.Repository
	clientRepo client.Repository
	generator  pdf.Generator
	creditor   client.Address
	logger     *logger.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	billRepo bill.Repository,
	clientRepo client.Repository,
	generator pdf.Generator,
	cfg *config.Configuration,
	log *logger.Logger,
) InvoiceService {
	return &invoiceService{
		billRepo:   billRepo,
		clientRepo: clientRepo,
		generator:  generator,
		creditor:   CreditorAddress(cfg),
		logger:     log,
	}
}

// CreditorAddress builds the configured payee address.
func CreditorAddress(cfg *config.Configuration) client.Address {
	return client.Address{
		Name:           cfg.Creditor.Name,
		Street:         lo.EmptyableToPtr(cfg.Creditor.Street),
		BuildingNumber: lo.EmptyableToPtr(cfg.Creditor.BuildingNumber),
		PostalCode:     cfg.Creditor.PostalCode,
		City:           cfg.Creditor.City,
		Country:        cfg.Creditor.Country,
	}
}

// GenerateAndStorePdf regenerates the PDF for a stored bill. A failed
// generation returns the error and leaves any previously stored
// pdf_data/pdf_created_at pair untouched.
func (s *invoiceService) GenerateAndStorePdf(ctx context.Context, billID uint64) (*bill.Bill, error) {
	b, err := s.billRepo.Get(ctx, billID)
	if err != nil {
		return nil, err
	}

	c, err := s.clientRepo.Get(ctx, b.ClientID)
	if err != nil {
		return nil, err
	}

	res, err := s.generator.GenerateInvoicePdf(ctx, b, c, s.creditor)
	if err != nil {
		return nil, err
	}

	if err := s.billRepo.UpdatePDF(ctx, b.ID, res.PDF, res.CreatedAt); err != nil {
		return nil, err
	}

	b.PDFData = res.PDF
	b.PDFCreatedAt = &res.CreatedAt
	return b, nil
}
