package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fakturo/fakturo/internal/config"
	"github.com/fakturo/fakturo/internal/domain/bill"
	"github.com/fakturo/fakturo/internal/domain/client"
	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/fakturo/fakturo/internal/iban"
	"github.com/fakturo/fakturo/internal/logger"
	"github.com/fakturo/fakturo/internal/reference"
	"github.com/fakturo/fakturo/internal/template"
	"github.com/fakturo/fakturo/internal/typst"
	"github.com/fakturo/fakturo/internal/validator"
	"github.com/samber/lo"
)

// Stage identifies the pipeline step at which a generation failure occurred.
type Stage string

const (
	StageFields   Stage = "fields"
	StageTemplate Stage = "template"
	StageHost     Stage = "host"
	StageCompile  Stage = "compile"
)

// GenerationError tags a pipeline failure with its stage. The underlying
// error is wrapped verbatim, never swallowed.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("pdf generation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func failAt(stage Stage, err error) error {
	return &GenerationError{Stage: stage, Err: err}
}

// Result pairs the rendered PDF with its generation instant. The two travel
// together: the caller persists them as a unit.
type Result struct {
	PDF       []byte
	CreatedAt time.Time
}

// Generator defines the interface for invoice PDF generation
type Generator interface {
	GenerateInvoicePdf(ctx context.Context, b *bill.Bill, c *client.Client, creditor client.Address) (*Result, error)
}

type service struct {
	cfg      *config.Configuration
	logger   *logger.Logger
	compiler typst.Compiler
	refs     reference.Generator
}

// NewGenerator creates a new PDF generation service
func NewGenerator(cfg *config.Configuration, log *logger.Logger, compiler typst.Compiler) Generator {
	return &service{
		cfg:      cfg,
		logger:   log,
		compiler: compiler,
		refs:     reference.NewGenerator(cfg.Reference.ClientOffset, cfg.Reference.BillOffset),
	}
}

// GenerateInvoicePdf runs the whole pipeline synchronously: build the field
// map, fill the template, construct a compiler world over the filled source
// and compile it. Any stage failure short-circuits; nothing is retried.
func (s *service) GenerateInvoicePdf(ctx context.Context, b *bill.Bill, c *client.Client, creditor client.Address) (*Result, error) {
	fields, err := s.buildFields(b, c, creditor)
	if err != nil {
		return nil, failAt(StageFields, err)
	}

	tpl, err := template.Load(s.cfg.Pdf.TemplateDir, s.cfg.Pdf.TemplateName)
	if err != nil {
		return nil, failAt(StageTemplate, err)
	}
	source, err := template.Fill(tpl, fields)
	if err != nil {
		return nil, failAt(StageTemplate, err)
	}

	world, err := typst.NewWorld(s.cfg, s.logger, source)
	if err != nil {
		return nil, failAt(StageHost, err)
	}

	data, err := s.compiler.Compile(ctx, world)
	if err != nil {
		return nil, failAt(StageCompile, err)
	}

	s.logger.Infow("generated invoice pdf",
		"bill_id", b.ID,
		"client_id", b.ClientID,
		"bytes", len(data),
	)

	return &Result{PDF: data, CreatedAt: time.Now().UTC()}, nil
}

// buildFields assembles the full placeholder map. Every recognized key is
// always present; genuinely absent optional data becomes the empty string.
func (s *service) buildFields(b *bill.Bill, c *client.Client, creditor client.Address) (map[string]string, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := validator.ValidateRequest(c); err != nil {
		return nil, err
	}
	if err := validator.ValidateRequest(creditor); err != nil {
		return nil, err
	}

	account := b.IBAN
	if account == "" {
		account = s.cfg.Creditor.IBAN
	}
	if !iban.IsValid(account) {
		return nil, ierr.NewError("invalid account number").
			WithHintf("Account %q is not a valid IBAN", account).
			Mark(ierr.ErrValidation)
	}

	ref := b.Reference
	if ref == "" {
		ref = s.refs.Generate(b.ID, b.ClientID, b.Date.Year())
	}

	debtor := c.EffectiveBillingAddress()

	return map[string]string{
		"account":              account,
		"creditor-name":        creditor.Name,
		"creditor-street":      lo.FromPtr(creditor.Street),
		"creditor-building":    lo.FromPtr(creditor.BuildingNumber),
		"creditor-postal-code": creditor.PostalCode,
		"creditor-city":        creditor.City,
		"creditor-country":     creditor.Country,
		"amount":               b.Total().StringFixed(2),
		"currency":             s.cfg.Pdf.Currency,
		"debtor-name":          debtor.Name,
		"debtor-street":        lo.FromPtr(debtor.Street),
		"debtor-building":      lo.FromPtr(debtor.BuildingNumber),
		"debtor-postal-code":   debtor.PostalCode,
		"debtor-city":          debtor.City,
		"debtor-country":       debtor.Country,
		"reference-type":       "SCOR",
		"reference":            ref,
		"additional-info":      b.Notes,
		"table-contents":       lineItemsFragment(b),
	}, nil
}

// lineItemsFragment renders the bill items as typst table cells, one row per
// item in insertion order, followed by a summary row with the grand total.
func lineItemsFragment(b *bill.Bill) string {
	rows := lo.Map(b.Items, func(item bill.BillItem, _ int) string {
		return fmt.Sprintf("[%s], [%s], [%s], [%s], [%s],",
			escape(item.Note),
			escape(item.Description),
			item.Quantity.String(),
			item.UnitPrice.StringFixed(2),
			item.Total().StringFixed(2),
		)
	})
	rows = append(rows, fmt.Sprintf("[], [*Total*], [], [], [*%s*],", b.Total().StringFixed(2)))
	return strings.Join(rows, "\n")
}

var typstEscaper = strings.NewReplacer(
	`\`, `\\`,
	`[`, `\[`,
	`]`, `\]`,
	`#`, `\#`,
	`$`, `\$`,
	`*`, `\*`,
	`_`, `\_`,
	`@`, `\@`,
)

// escape neutralizes typst markup in user-entered text.
func escape(s string) string {
	return typstEscaper.Replace(s)
}
