package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fakturo/fakturo/internal/config"
	"github.com/fakturo/fakturo/internal/domain/bill"
	"github.com/fakturo/fakturo/internal/domain/client"
	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/fakturo/fakturo/internal/logger"
	"github.com/fakturo/fakturo/internal/typst"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockCompiler is a mock implementation of the typst.Compiler interface
type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) Compile(ctx context.Context, world *typst.World) ([]byte, error) {
	args := m.Called(ctx, world)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

const fixtureTemplate = `#set page(paper: "a4")
Account: {{account}}
Creditor: {{creditor-name}}, {{creditor-street}} {{creditor-building}}, {{creditor-postal-code}} {{creditor-city}}, {{creditor-country}}
Debtor: {{debtor-name}}, {{debtor-street}} {{debtor-building}}, {{debtor-postal-code}} {{debtor-city}}, {{debtor-country}}
Amount: {{currency}} {{amount}}
Reference ({{reference-type}}): {{reference}}
Notes: {{additional-info}}
#table(
{{table-contents}}
)
`

type GeneratorSuite struct {
	suite.Suite
	cfg      *config.Configuration
	logger   *logger.Logger
	compiler *MockCompiler
	service  Generator

	bill     *bill.Bill
	client   *client.Client
	creditor client.Address
}

func TestGenerator(t *testing.T) {
	suite.Run(t, new(GeneratorSuite))
}

func (s *GeneratorSuite) SetupTest() {
	var err error
	s.logger, err = logger.NewLogger(config.GetDefaultConfig())
	s.Require().NoError(err)

	s.cfg = config.GetDefaultConfig()
	s.cfg.Pdf.TemplateDir = s.T().TempDir()
	s.cfg.Pdf.PackageCacheDir = s.T().TempDir()
	s.Require().NoError(os.WriteFile(
		filepath.Join(s.cfg.Pdf.TemplateDir, s.cfg.Pdf.TemplateName),
		[]byte(fixtureTemplate),
		0o644,
	))

	s.compiler = new(MockCompiler)
	s.service = NewGenerator(s.cfg, s.logger, s.compiler)

	s.bill = &bill.Bill{
		ID:       7,
		ClientID: 3,
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:  time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		IBAN:     "CH93 0076 2011 6238 5295 7",
		Notes:    "Payable within 30 days",
		Items: []bill.BillItem{
			{Description: "Consulting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("100.00")},
			{Description: "Travel", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("50.00")},
		},
	}
	s.client = &client.Client{
		ID:   3,
		Name: "ACME Corp",
		Address: client.Address{
			Name:       "ACME Corp",
			Street:     lo.ToPtr("Industriestrasse"),
			PostalCode: "3000",
			City:       "Bern",
			Country:    "CH",
		},
	}
	s.creditor = client.Address{
		Name:           "Fakturo AG",
		Street:         lo.ToPtr("Bahnhofstrasse"),
		BuildingNumber: lo.ToPtr("1"),
		PostalCode:     "8000",
		City:           "Zurich",
		Country:        "CH",
	}
}

func (s *GeneratorSuite) TestGenerateInvoicePdf() {
	expected := []byte("%PDF-1.7 mocked")
	s.compiler.On("Compile", mock.Anything, mock.MatchedBy(func(w *typst.World) bool {
		src := w.MainSource()
		// all placeholders resolved, line items and summary row present
		return !strings.Contains(src, "{{") &&
			strings.Contains(src, "[Consulting], [2], [100.00], [200.00],") &&
			strings.Contains(src, "[Travel], [1], [50.00], [50.00],") &&
			strings.Contains(src, "[*250.00*]") &&
			strings.Contains(src, "CHF 250.00")
	})).Return(expected, nil)

	res, err := s.service.GenerateInvoicePdf(context.Background(), s.bill, s.client, s.creditor)
	s.Require().NoError(err)
	s.Equal(expected, res.PDF)
	s.False(res.CreatedAt.IsZero(), "bytes always come paired with their generation instant")
	s.compiler.AssertExpectations(s.T())
}

func (s *GeneratorSuite) TestBillingAddressFallback() {
	// no distinct billing address: the primary address is the debtor
	s.compiler.On("Compile", mock.Anything, mock.MatchedBy(func(w *typst.World) bool {
		return strings.Contains(w.MainSource(), "Debtor: ACME Corp, Industriestrasse , 3000 Bern, CH")
	})).Return([]byte("%PDF"), nil)

	_, err := s.service.GenerateInvoicePdf(context.Background(), s.bill, s.client, s.creditor)
	s.Require().NoError(err)
	s.compiler.AssertExpectations(s.T())
}

func (s *GeneratorSuite) TestDistinctBillingAddress() {
	s.client.BillingAddress = &client.Address{
		Name:       "ACME Billing",
		PostalCode: "4000",
		City:       "Basel",
		Country:    "CH",
	}
	s.compiler.On("Compile", mock.Anything, mock.MatchedBy(func(w *typst.World) bool {
		return strings.Contains(w.MainSource(), "Debtor: ACME Billing,  , 4000 Basel, CH")
	})).Return([]byte("%PDF"), nil)

	_, err := s.service.GenerateInvoicePdf(context.Background(), s.bill, s.client, s.creditor)
	s.Require().NoError(err)
}

func (s *GeneratorSuite) TestReferenceGeneratedWhenMissing() {
	s.bill.Reference = ""
	s.compiler.On("Compile", mock.Anything, mock.MatchedBy(func(w *typst.World) bool {
		return strings.Contains(w.MainSource(), "Reference (SCOR): RF")
	})).Return([]byte("%PDF"), nil)

	_, err := s.service.GenerateInvoicePdf(context.Background(), s.bill, s.client, s.creditor)
	s.Require().NoError(err)
}

func (s *GeneratorSuite) TestMissingTemplate() {
	s.Require().NoError(os.Remove(filepath.Join(s.cfg.Pdf.TemplateDir, s.cfg.Pdf.TemplateName)))

	res, err := s.service.GenerateInvoicePdf(context.Background(), s.bill, s.client, s.creditor)
	s.Require().Error(err)
	s.Nil(res, "no partial result on failure")
	s.True(ierr.IsTemplate(err))

	var genErr *GenerationError
	s.Require().True(ierr.As(err, &genErr))
	s.Equal(StageTemplate, genErr.Stage)
}

func (s *GeneratorSuite) TestInvalidAccount() {
	s.bill.IBAN = "CH93 0076 2011 6238 5295 8"

	res, err := s.service.GenerateInvoicePdf(context.Background(), s.bill, s.client, s.creditor)
	s.Require().Error(err)
	s.Nil(res)
	s.True(ierr.IsValidation(err))

	var genErr *GenerationError
	s.Require().True(ierr.As(err, &genErr))
	s.Equal(StageFields, genErr.Stage)
}

func (s *GeneratorSuite) TestCompileFailurePropagates() {
	compileErr := ierr.NewError("typst compilation failed").Mark(ierr.ErrCompile)
	s.compiler.On("Compile", mock.Anything, mock.Anything).Return(nil, compileErr)

	res, err := s.service.GenerateInvoicePdf(context.Background(), s.bill, s.client, s.creditor)
	s.Require().Error(err)
	s.Nil(res)
	s.True(ierr.IsCompile(err), "underlying error is wrapped, not swallowed")

	var genErr *GenerationError
	s.Require().True(ierr.As(err, &genErr))
	s.Equal(StageCompile, genErr.Stage)
}

func (s *GeneratorSuite) TestItemTextIsEscaped() {
	s.bill.Items = []bill.BillItem{{
		Description: "Review [draft] #3",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString("10.00"),
	}}
	s.compiler.On("Compile", mock.Anything, mock.MatchedBy(func(w *typst.World) bool {
		return strings.Contains(w.MainSource(), `Review \[draft\] \#3`)
	})).Return([]byte("%PDF"), nil)

	_, err := s.service.GenerateInvoicePdf(context.Background(), s.bill, s.client, s.creditor)
	s.Require().NoError(err)
}
