package testutil

import (
	"sync"
	"testing"

	"github.com/akadox/akadox/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	bootOnce sync.Once
	bootErr  error
)

// BootTemplates boots the template engine once per test binary with the
// shared page set.
func BootTemplates(t *testing.T) {
	t.Helper()

	bootOnce.Do(func() {
		resources.LoadSharedTemplates()
		logger := zap.NewNop()
		eng := templates.New(false)
		if bootErr = eng.Boot(logger); bootErr != nil {
			return
		}
		templates.UseEngine(eng, logger)
	})
	if bootErr != nil {
		t.Fatalf("template engine boot failed: %v", bootErr)
	}
}
