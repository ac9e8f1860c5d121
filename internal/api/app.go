package api

import (
	"database/sql"
	"net/http"

	"github.com/rs/zerolog/log"

	"askly/internal/api/handlers"
	"askly/internal/api/middleware"
	"askly/internal/engine/admission"
	"askly/internal/engine/identity"
	"askly/internal/engine/organizations"
	"askly/internal/engine/questions"
	"askly/internal/pkg/clock"
	"askly/internal/platform/audit"
	"askly/internal/platform/auth"
	"askly/internal/platform/config"
)

// App is the fully wired HTTP surface.
type App struct {
	Handler http.Handler

	audit   *audit.Logger
	limiter *middleware.RateLimiter
}

func New(db *sql.DB, cfg *config.Config, c clock.Clock) *App {
	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	auditLogger := audit.NewLogger(db, c)

	identitySvc := identity.NewService(db, hasher, tokenSvc, c)
	registry := organizations.NewRegistry(db, auditLogger, c, cfg.Domains.AppDomain)
	ledger := questions.NewLedger(db)
	controller := admission.NewController(db, ledger, auditLogger, c)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc, identitySvc, cfg.JWT.Header)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute)

	router := NewRouter(&Dependencies{
		AuthHandler:     handlers.NewAuthHandler(identitySvc),
		OrgHandler:      handlers.NewOrgHandler(registry),
		QuestionHandler: handlers.NewQuestionHandler(controller, ledger, registry),
		AuditHandler:    handlers.NewAuditHandler(registry),
		HealthHandler:   handlers.NewHealthHandler(db),
		AuthMiddleware:  authMiddleware,
		AuthRateLimiter: limiter,
	})

	var handler http.Handler = router
	handler = middleware.CORS(cfg.CORS)(handler)
	handler = middleware.RequestLogger(log.Logger)(handler)

	return &App{Handler: handler, audit: auditLogger, limiter: limiter}
}

// Close stops background work and waits for pending audit writes.
func (a *App) Close() {
	a.limiter.Close()
	a.audit.Wait()
}
