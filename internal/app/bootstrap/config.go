// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// minProdSessionKey is the shortest session key accepted in prod.
const minProdSessionKey = 32

// appConfigKeys defines the configuration keys for StayDesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, mongo_uri, etc.
//   - Environment variables: STAYDESK_API_BASE_URL, STAYDESK_MONGO_URI, etc.
//   - Command-line flags: --api_base_url, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "api_base_url", Default: "https://airbnbnew.cybersoft.edu.vn/api", Desc: "Marketplace API base URL"},
	{Name: "api_project_token", Default: "", Desc: "Marketplace project token (tokenCybersoft header)"},
	{Name: "api_timeout", Default: "15s", Desc: "Per-request timeout for marketplace API calls"},
	{Name: "api_max_retries", Default: 3, Desc: "Retries for idempotent API reads (0 disables)"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "staydesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "staydesk-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},
	{Name: "session_idle_timeout", Default: "2h", Desc: "Close sessions idle this long (0 disables)"},
	{Name: "session_cleanup_interval", Default: "5m", Desc: "How often idle sessions are swept"},
	{Name: "csrf_key", Default: "", Desc: "CSRF signing key, 32 bytes (blank derives from session_key)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "login_rate_per_minute", Default: 10, Desc: "Sign-in attempts allowed per IP per minute"},
	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics at /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STAYDESK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STAYDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURL:      appValues.String("api_base_url"),
		APIProjectToken: appValues.String("api_project_token"),
		APITimeout:      appValues.Duration("api_timeout", 15*time.Second),
		APIMaxRetries:   appValues.Int("api_max_retries"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		SessionIdleTimeout:     appValues.Duration("session_idle_timeout", 2*time.Hour),
		SessionCleanupInterval: appValues.Duration("session_cleanup_interval", 5*time.Minute),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),
		MetricsEnabled:     appValues.Bool("metrics_enabled"),
	}

	if appCfg.APIProjectToken == "" {
		logger.Warn("api_project_token is empty; marketplace API calls will be rejected")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// StayDesk checks the MongoDB URI and the API base URL before anything
// tries to connect, and refuses a weak session key in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if !urlutil.IsValidAbsHTTPURL(appCfg.APIBaseURL) {
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", appCfg.APIBaseURL)
	}

	if coreCfg.Env == "prod" && len(appCfg.SessionKey) < minProdSessionKey {
		return fmt.Errorf("session_key must be at least %d characters in prod", minProdSessionKey)
	}

	if appCfg.APIMaxRetries < 0 {
		return fmt.Errorf("api_max_retries must not be negative")
	}

	return nil
}
