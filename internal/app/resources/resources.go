// internal/app/resources/resources.go
package resources

import (
	"embed"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Embed the layout and partials (shared) and the page entry templates.
//
//go:embed templates/shared/*.gohtml templates/pages/*.gohtml
var FS embed.FS

var registerOnce sync.Once

// LoadSharedTemplates registers the shared layout set and the page set.
// Call it before the engine boots.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     "shared",
			FS:       FS,
			Patterns: []string{"templates/shared/*.gohtml"},
		})
		templates.Register(templates.Set{
			Name:     "pages",
			FS:       FS,
			Patterns: []string{"templates/pages/*.gohtml"},
		})
	})
}
