// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/akadox/akadox/internal/app/resources"
	"github.com/akadox/akadox/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup registers the shared template set before BuildHandler boots the
// engine, and records the backend timeouts in effect.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	t := timeouts.Current()
	logger.Info("backend timeouts",
		zap.Duration("ping", t.Ping),
		zap.Duration("short", t.Short),
		zap.Duration("medium", t.Medium))
	return nil
}
