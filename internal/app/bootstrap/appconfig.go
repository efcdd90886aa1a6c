// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds Akadox-specific configuration.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and request limits.
// Everything here is loaded by LoadConfig from AKADOX_* environment
// variables, config files or flags.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // e.g. mongodb://localhost:27017
	MongoDatabase string // database holding perfis_usuarios and the document collections

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: akadox-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Rolling lifetime; refreshed on every request

	// Redis backs the login rate limiter when RedisAddr is set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Login throttling, applied per IP and per email.
	LoginMaxAttempts int
	LoginWindow      time.Duration

	// OAuth (Google endpoint). Sign-in with Google is hidden when unset.
	OAuthClientID     string
	OAuthClientSecret string

	// Base URL used to build the OAuth redirect URI.
	BaseURL string
}
