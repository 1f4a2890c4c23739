package typst

import (
	"context"
	"os/exec"
	"testing"

	"github.com/fakturo/fakturo/internal/config"
	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/fakturo/fakturo/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestParseDiagnostics(t *testing.T) {
	output := `main.typ:3:4: error: unknown variable: foo
main.typ:10:0: warning: text overflows the page
something went sideways
`
	diags := ParseDiagnostics(output)
	require.Len(t, diags, 3)

	assert.Equal(t, Diagnostic{
		Severity: "error",
		File:     "main.typ",
		Line:     3,
		Column:   4,
		Message:  "unknown variable: foo",
	}, diags[0])

	assert.Equal(t, "warning", diags[1].Severity)
	assert.Equal(t, 10, diags[1].Line)

	// unmatched lines are kept rather than dropped
	assert.Equal(t, "something went sideways", diags[2].Message)
	assert.Equal(t, "error", diags[2].Severity)
}

func TestParseDiagnosticsEmpty(t *testing.T) {
	assert.Empty(t, ParseDiagnostics(""))
	assert.Empty(t, ParseDiagnostics("\n\n"))
}

func TestCompileErrorPreservesAllDiagnostics(t *testing.T) {
	err := &CompileError{Diagnostics: []Diagnostic{
		{Severity: "error", File: "main.typ", Line: 1, Column: 2, Message: "first"},
		{Severity: "error", Message: "second"},
	}}
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.Contains(t, err.Error(), "main.typ:1:2")
}

type CompilerSuite struct {
	suite.Suite
	cfg    *config.Configuration
	logger *logger.Logger
}

func TestCompiler(t *testing.T) {
	suite.Run(t, new(CompilerSuite))
}

func (s *CompilerSuite) SetupTest() {
	// compilation tests need the typst binary
	if _, err := exec.LookPath("typst"); err != nil {
		s.T().Skip("Skipping tests because typst is not available in the system")
		return
	}

	var err error
	s.logger, err = logger.NewLogger(config.GetDefaultConfig())
	s.Require().NoError(err)

	s.cfg = config.GetDefaultConfig()
	s.cfg.Pdf.TemplateDir = s.T().TempDir()
	s.cfg.Pdf.PackageCacheDir = s.T().TempDir()
}

func (s *CompilerSuite) compile(source string) ([]byte, error) {
	world, err := NewWorld(s.cfg, s.logger, source)
	s.Require().NoError(err)
	return DefaultCompiler(s.logger).Compile(context.Background(), world)
}

func (s *CompilerSuite) TestCompileProducesPdf() {
	data, err := s.compile("Hello, World!")
	s.Require().NoError(err)
	s.NotEmpty(data)
	s.Equal("%PDF", string(data[:4]))
}

func (s *CompilerSuite) TestCompileIsDeterministic() {
	// fixed clock: identical inputs compile to byte-identical output
	first, err := s.compile("= Invoice\nTotal: 250.00")
	s.Require().NoError(err)
	second, err := s.compile("= Invoice\nTotal: 250.00")
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *CompilerSuite) TestCompileFailureCarriesDiagnostics() {
	_, err := s.compile("#undefined-function()")
	s.Require().Error(err)
	s.True(ierr.IsCompile(err))

	var compileErr *CompileError
	s.Require().True(ierr.As(err, &compileErr))
	s.NotEmpty(compileErr.Diagnostics)
}

func (s *CompilerSuite) TestMissingBinary() {
	world, err := NewWorld(s.cfg, s.logger, "Hello")
	s.Require().NoError(err)

	_, err = NewCompiler(s.logger, "typst-binary-that-does-not-exist").Compile(context.Background(), world)
	s.Require().Error(err)
	s.False(ierr.IsCompile(err))
}
