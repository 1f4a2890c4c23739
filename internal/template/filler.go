// Package template renders the typst invoice source by substituting named
// placeholders with bill, client and creditor fields.
package template

import (
	"os"
	"path/filepath"
	"regexp"

	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/samber/lo"
)

// placeholders look like {{creditor-name}}
var placeholderRe = regexp.MustCompile(`\{\{([a-z0-9-]+)\}\}`)

// Load reads a template resource from the template directory.
func Load(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", ierr.WithError(err).
			WithMessagef("failed to read template %q", name).
			WithHintf("Template resource %q is missing or unreadable in %s", name, dir).
			Mark(ierr.ErrTemplate)
	}
	return string(data), nil
}

// Fill substitutes every placeholder in text with its value from fields.
// Callers supply every recognized key, using the empty string for absent
// optional data, so a key missing from fields means the template references
// a field the pipeline does not know about. A template with no placeholders
// at all is treated as a misconfigured deployment.
func Fill(text string, fields map[string]string) (string, error) {
	if !placeholderRe.MatchString(text) {
		return "", ierr.NewError("template contains no placeholders").
			WithHint("The configured template does not look like an invoice template").
			Mark(ierr.ErrTemplate)
	}

	var unknown []string
	out := placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		key := m[2 : len(m)-2]
		val, ok := fields[key]
		if !ok {
			unknown = append(unknown, key)
			return ""
		}
		return val
	})

	if len(unknown) > 0 {
		return "", ierr.NewError("template references unknown placeholders").
			WithHint("The template uses fields the invoice pipeline does not supply").
			WithReportableDetails(map[string]any{
				"placeholders": lo.Uniq(unknown),
			}).
			Mark(ierr.ErrTemplate)
	}
	return out, nil
}
