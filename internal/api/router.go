package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/hlog"

	apiContext "askly/internal/api/context"
	"askly/internal/api/handlers"
	"askly/internal/api/middleware"
	"askly/internal/pkg/errors"
	"askly/internal/platform/audit"
)

type Dependencies struct {
	AuthHandler     *handlers.AuthHandler
	OrgHandler      *handlers.OrgHandler
	QuestionHandler *handlers.QuestionHandler
	AuditHandler    *handlers.AuditHandler
	HealthHandler   *handlers.HealthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	AuthRateLimiter *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))

	authMid := deps.AuthMiddleware
	limiter := deps.AuthRateLimiter

	// Authentication routes
	router.POST("/api/auth/register", chain(deps.AuthHandler.Register, limiter.Limit))
	router.POST("/api/auth/login", chain(deps.AuthHandler.Login, limiter.Limit))
	router.GET("/api/auth/user", chain(deps.AuthHandler.User, authMid.Handle))

	// Organizations. "my" shares the :url position with public slug lookups;
	// slugs always end in a timestamp so they cannot collide with it.
	listMine := chain(deps.OrgHandler.ListMine, authMid.Handle)
	getOrg := wrap(deps.OrgHandler.Get)
	router.GET("/api/organizations/:url", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("url") == "my" {
			listMine(w, r, ps)
			return
		}
		getOrg(w, r, ps)
	})
	router.GET("/api/organizations/:url/qr", wrap(deps.OrgHandler.QRCode))
	router.GET("/api/organizations/:url/audit", chain(deps.AuditHandler.List, authMid.Handle))
	router.POST("/api/organizations", chain(deps.OrgHandler.Create, authMid.Handle))
	router.POST("/api/organizations/join", chain(deps.OrgHandler.Join, authMid.Handle))
	router.PATCH("/api/organizations/:id", chain(deps.OrgHandler.UpdateSettings, authMid.Handle))
	router.PATCH("/api/organizations/:id/toggle-messages", chain(deps.OrgHandler.ToggleMessages, authMid.Handle))

	// Questions
	router.POST("/api/questions", chain(deps.QuestionHandler.Ask, authMid.Handle))
	router.GET("/api/questions/:orgUrl", wrap(deps.QuestionHandler.List))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Route not found", nil)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusMethodNotAllowed, errors.ErrCodeInvalidInput, "Method not allowed", nil)
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		hlog.FromRequest(r).Error().Interface("panic", v).Str("path", r.URL.Path).Msg("handler panicked")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Server Error", nil)
	}

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		ctx = audit.WithRequest(ctx, r)
		handler(w, r.WithContext(ctx))
	}
}
