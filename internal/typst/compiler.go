package typst

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/fakturo/fakturo/internal/logger"
)

// Diagnostic is a single structured entry reported by the compiler.
type Diagnostic struct {
	Severity string `json:"severity"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Message  string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.File != "" {
		return strings.Join([]string{
			d.File + ":" + strconv.Itoa(d.Line) + ":" + strconv.Itoa(d.Column),
			d.Severity,
			d.Message,
		}, ": ")
	}
	return d.Severity + ": " + d.Message
}

// CompileError carries every diagnostic the compiler reported. Diagnostics
// are surfaced together, never collapsed into a single message.
type CompileError struct {
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Compiler compiles a world's main source into PDF bytes.
type Compiler interface {
	Compile(ctx context.Context, world *World) ([]byte, error)
}

// compiler drives the typst executable as the embedded compiler. The world
// supplies everything the binary is allowed to see: the main source arrives
// on stdin, local files resolve under the template dir, packages under the
// cache root, fonts from the enumerated directories, and the document date
// is pinned to the world's fixed clock.
type compiler struct {
	logger     *logger.Logger
	binaryPath string
}

// NewCompiler creates a new typst compiler
func NewCompiler(log *logger.Logger, binaryPath string) Compiler {
	return &compiler{
		logger:     log,
		binaryPath: binaryPath,
	}
}

// DefaultCompiler creates a compiler with default settings
func DefaultCompiler(log *logger.Logger) Compiler {
	return NewCompiler(log, "typst")
}

func (c *compiler) Compile(ctx context.Context, world *World) ([]byte, error) {
	// materialize package dependencies before handing over to the binary
	if err := world.EnsurePackages(); err != nil {
		return nil, err
	}

	args := []string{
		"compile",
		"--format", "pdf",
		"--root", world.TemplateDir(),
		"--package-cache-path", world.PackageCacheDir(),
		"--diagnostic-format", "short",
		"--ignore-system-fonts",
		"--creation-timestamp", strconv.FormatInt(world.Today().Unix(), 10),
	}
	for _, dir := range FontDirs(world.Fonts()) {
		args = append(args, "--font-path", dir)
	}
	args = append(args, "-", "-")

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)
	cmd.Dir = world.TemplateDir()
	cmd.Stdin = strings.NewReader(world.MainSource())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ierr.WithError(err).
				WithMessagef("typst binary %q not found", c.binaryPath).
				WithHint("Install typst or set pdf.typst_binary to its location").
				Mark(ierr.ErrSystem)
		}
		compileErr := &CompileError{Diagnostics: ParseDiagnostics(stderr.String())}
		return nil, ierr.WithError(compileErr).
			WithMessage("typst compilation failed").
			WithHint("The invoice source did not compile").
			WithReportableDetails(map[string]any{
				"diagnostics": compileErr.Diagnostics,
			}).
			Mark(ierr.ErrCompile)
	}

	if warnings := stderr.String(); strings.TrimSpace(warnings) != "" {
		c.logger.Warnw("typst reported warnings", "warnings", warnings)
	}

	return stdout.Bytes(), nil
}

// short diagnostic format: <file>:<line>:<column>: <severity>: <message>
var diagnosticRe = regexp.MustCompile(`^(?:(.+?):(\d+):(\d+):\s*)?(error|warning):\s*(.*)$`)

// ParseDiagnostics turns the compiler's short-format stderr output into
// structured entries. Lines that do not match the format are kept as
// bare error entries so nothing the compiler said is lost.
func ParseDiagnostics(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := diagnosticRe.FindStringSubmatch(line)
		if m == nil {
			diags = append(diags, Diagnostic{Severity: "error", Message: line})
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		diags = append(diags, Diagnostic{
			Severity: m[4],
			File:     m[1],
			Line:     lineNo,
			Column:   col,
			Message:  m[5],
		})
	}
	return diags
}
