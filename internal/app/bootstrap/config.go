// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Akadox.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: AKADOX_MONGO_URI, AKADOX_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "akadox", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "akadox-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime, refreshed on each request (e.g., 24h, 720h)"},

	// Redis (optional)
	{Name: "redis_addr", Default: "", Desc: "Redis address for shared login rate limiting (blank uses in-process counters)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Login throttling
	{Name: "login_max_attempts", Default: 10, Desc: "Login attempts allowed per IP and per email within login_window"},
	{Name: "login_window", Default: "1m", Desc: "Login rate-limit window (e.g., 1m, 15m)"},

	// OAuth
	{Name: "oauth_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "oauth_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL (OAuth redirect URI is built from it)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, with precedence
// flags > env > files > defaults:
//   - .env files
//   - config.yaml/json/toml files
//   - environment variables (WAFFLE_* for core, AKADOX_* for app)
//   - command-line flags
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "AKADOX", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 720*time.Hour),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		LoginMaxAttempts: appValues.Int("login_max_attempts"),
		LoginWindow:      appValues.Duration("login_window", time.Minute),

		OAuthClientID:     appValues.String("oauth_client_id"),
		OAuthClientSecret: appValues.String("oauth_client_secret"),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations that cannot start: a malformed
// MongoDB URI, a missing session key, or nonsensical login limits.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database must not be empty")
	}
	if appCfg.SessionKey == "" {
		return errors.New("session_key must not be empty")
	}
	if appCfg.LoginMaxAttempts <= 0 {
		return fmt.Errorf("login_max_attempts must be positive, got %d", appCfg.LoginMaxAttempts)
	}
	if appCfg.LoginWindow <= 0 {
		return fmt.Errorf("login_window must be positive, got %s", appCfg.LoginWindow)
	}
	if (appCfg.OAuthClientID == "") != (appCfg.OAuthClientSecret == "") {
		logger.Warn("only one of oauth_client_id/oauth_client_secret is set; Google sign-in stays disabled")
	}
	return nil
}
