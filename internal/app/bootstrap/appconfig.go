// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries what is specific to StayDesk: where the marketplace
// API lives, the operational Mongo database, and session/audit settings.
type AppConfig struct {
	// Marketplace API
	APIBaseURL      string        // e.g. https://airbnbnew.cybersoft.edu.vn/api
	APIProjectToken string        // sent as the tokenCybersoft header on every call
	APITimeout      time.Duration // per-request HTTP timeout
	APIMaxRetries   int           // retries for idempotent reads (0 disables)

	// MongoDB connection configuration (sessions + audit only)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: staydesk-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Idle sessions are closed by a background sweep; 0 disables it.
	SessionIdleTimeout     time.Duration
	SessionCleanupInterval time.Duration

	// CSRFKey signs CSRF tokens; blank derives it from SessionKey.
	CSRFKey string

	// Audit logging destinations: all, db, log, off
	AuditLogAuth  string
	AuditLogAdmin string

	// LoginRatePerMinute caps sign-in attempts per IP.
	LoginRatePerMinute int

	MetricsEnabled bool
}
