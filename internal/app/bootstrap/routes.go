// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/dalemusser/staydesk/internal/app/apiclient"
	auditfeature "github.com/dalemusser/staydesk/internal/app/features/auditlog"
	bookingsfeature "github.com/dalemusser/staydesk/internal/app/features/bookings"
	chartsfeature "github.com/dalemusser/staydesk/internal/app/features/charts"
	errorsfeature "github.com/dalemusser/staydesk/internal/app/features/errors"
	healthfeature "github.com/dalemusser/staydesk/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/staydesk/internal/app/features/heartbeat"
	homefeature "github.com/dalemusser/staydesk/internal/app/features/home"
	locationsfeature "github.com/dalemusser/staydesk/internal/app/features/locations"
	loginfeature "github.com/dalemusser/staydesk/internal/app/features/login"
	logoutfeature "github.com/dalemusser/staydesk/internal/app/features/logout"
	profilefeature "github.com/dalemusser/staydesk/internal/app/features/profile"
	roomsfeature "github.com/dalemusser/staydesk/internal/app/features/rooms"
	themefeature "github.com/dalemusser/staydesk/internal/app/features/theme"
	usersfeature "github.com/dalemusser/staydesk/internal/app/features/users"
	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/store/sessions"
	"github.com/dalemusser/staydesk/internal/app/system/aggregate"
	"github.com/dalemusser/staydesk/internal/app/system/auditlog"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/metrics"
	"github.com/dalemusser/staydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/app/system/workers"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// StayDesk builds one marketplace API client shared by every feature,
// initializes the template engine, applies metrics, CSRF and session
// middleware, and mounts the public pages, the account pages and the
// admin back-office.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	dev := coreCfg.Env == "dev"

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// A sign-out elsewhere closes the session row; the cookie follows.
	sessStore := sessions.New(deps.MongoDatabase)
	sessionMgr.SetSessionChecker(sessStore.IsActive)
	if appCfg.SessionIdleTimeout > 0 && appCfg.SessionCleanupInterval > 0 {
		sweeper := workers.NewSessionCleanup(sessStore, logger, appCfg.SessionCleanupInterval, appCfg.SessionIdleTimeout)
		sweeper.Start()
		onShutdown(sweeper.Stop)
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(dev)
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	viewdata.Init("StayDesk", sessionMgr.Theme)

	var m *metrics.Metrics
	if appCfg.MetricsEnabled {
		m = metrics.New()
	}

	api := newAPIClient(appCfg, m, logger)
	logger.Info("marketplace api client configured",
		zap.String("base_url", api.BaseURL()),
		zap.Duration("timeout", appCfg.APITimeout),
		zap.Int("max_retries", appCfg.APIMaxRetries))

	auditStore := audit.New(deps.MongoDatabase)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute)
	onShutdown(limiter.Close)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	if m != nil {
		r.Use(m.Middleware)
	}
	if !secure {
		r.Use(markPlaintext)
	}
	r.Use(csrf.Protect(csrfKey(appCfg),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(errorsHandler.Forbidden)),
	))

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Operational endpoints
	healthHandler := healthfeature.NewHandler(deps.MongoClient, api, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(api, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	themeHandler := themefeature.NewHandler(sessionMgr, logger)
	r.Mount("/theme", themefeature.Routes(themeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(api, sessionMgr, errLog, auditLog, sessStore, limiter, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	registerLimiter := ratelimit.NewRegisterLimiter(appCfg.LoginRatePerMinute)
	onShutdown(registerLimiter.Close)
	r.Mount("/register", loginfeature.RegisterRoutes(loginHandler, registerLimiter.Middleware(logger)))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, sessStore, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	heartbeatHandler := heartbeatfeature.NewHandler(logger)
	r.Mount("/api/heartbeat", heartbeatfeature.Routes(heartbeatHandler, sessionMgr))

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Account
	profileHandler := profilefeature.NewHandler(api, sessionMgr, auditLog, errLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Admin back-office
	usersHandler := usersfeature.NewHandler(api, sessionMgr, auditLog, errLog, logger)
	usersHandler.Sessions = sessStore
	usersHandler.Audit = auditStore
	r.Mount("/admin/users", usersfeature.Routes(usersHandler, sessionMgr))

	locationsHandler := locationsfeature.NewHandler(api, sessionMgr, auditLog, errLog, logger)
	r.Mount("/admin/locations", locationsfeature.Routes(locationsHandler, sessionMgr))

	roomsHandler := roomsfeature.NewHandler(api, sessionMgr, auditLog, errLog, logger)
	r.Mount("/admin/rooms", roomsfeature.Routes(roomsHandler, sessionMgr))

	bookingsHandler := bookingsfeature.NewHandler(api, sessionMgr, auditLog, errLog, logger)
	r.Mount("/admin/bookings", bookingsfeature.Routes(bookingsHandler, sessionMgr))

	builder := &chartsfeature.Builder{
		Source:     api,
		Normalizer: dashboardNormalizer(dev, logger),
		Log:        logger,
	}
	if m != nil {
		builder.Metrics = m
	}
	chartsHandler := chartsfeature.NewHandler(builder, logger)
	r.Mount("/admin/charts", chartsfeature.Routes(chartsHandler, sessionMgr))
	r.With(sessionMgr.RequireSignedIn, sessionMgr.RequireRole(models.RoleAdmin)).
		Get("/admin/charts.json", chartsHandler.ServeJSON)

	auditHandler := auditfeature.NewHandler(auditStore, errLog, logger)
	r.Mount("/admin/audit", auditfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

func newAPIClient(appCfg AppConfig, m *metrics.Metrics, logger *zap.Logger) *apiclient.Client {
	retry := apiclient.DefaultRetryConfig()
	retry.MaxRetries = appCfg.APIMaxRetries

	opts := []apiclient.Option{
		apiclient.WithHTTPClient(&http.Client{Timeout: 15 * time.Second, Transport: apiTransport()}),
		apiclient.WithRetry(retry),
	}
	if appCfg.APITimeout > 0 {
		opts = append(opts, apiclient.WithTimeout(appCfg.APITimeout))
	}
	if m != nil {
		opts = append(opts, apiclient.WithMetrics(m))
	}
	return apiclient.New(appCfg.APIBaseURL, appCfg.APIProjectToken, logger, opts...)
}

// apiTransport keeps enough idle connections to the marketplace host for
// the dashboard's concurrent dimension fetches.
func apiTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 8
	t.IdleConnTimeout = 90 * time.Second
	return t
}

// dashboardNormalizer panics on an unorderable month label in dev so the
// bug surfaces immediately; elsewhere the label is logged and sorted last.
func dashboardNormalizer(dev bool, logger *zap.Logger) aggregate.Normalizer {
	return aggregate.Normalizer{
		Strict: dev,
		OnViolation: func(v aggregate.ContractViolation) {
			logger.Warn("unorderable month label",
				zap.String("label", v.Label),
				zap.Error(v.Err))
		},
	}
}

// csrfKey returns the 32-byte CSRF auth key. Without an explicit csrf_key
// it is derived from the session key.
func csrfKey(appCfg AppConfig) []byte {
	if len(appCfg.CSRFKey) == 32 {
		return []byte(appCfg.CSRFKey)
	}
	src := appCfg.CSRFKey
	if src == "" {
		src = "csrf:" + appCfg.SessionKey
	}
	sum := sha256.Sum256([]byte(src))
	return sum[:]
}

// markPlaintext tells gorilla/csrf the request arrived over http://, which
// relaxes its HTTPS-only Referer check for local development.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}
