// Package normalize cleans user-supplied profile fields before they are
// stored or compared.
package normalize

import (
	"html"
	"strings"

	"github.com/akadox/akadox/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmailCI is the lookup key for an address: lowercase, diacritics folded.
func EmailCI(s string) string {
	return text.Fold(Email(s))
}

// Name strips any markup and collapses runs of whitespace. Case is kept.
// The sanitizer escapes entities; templates escape again on output, so the
// stored value is unescaped.
func Name(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
}

// Status trims and lowercases an account status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role returns the canonical spelling of a stored role, or "" when the
// value is outside the closed set.
func Role(s string) string {
	r, ok := models.ParseRole(s)
	if !ok {
		return ""
	}
	return string(r)
}
