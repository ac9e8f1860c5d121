package middleware

import (
	"context"
	stderrors "errors"
	"net/http"

	apiContext "askly/internal/api/context"
	"askly/internal/pkg/errors"
	"askly/internal/platform/auth"
)

// PrincipalLoader re-reads the user named by a token so that deleted users
// and changed flags take effect immediately.
type PrincipalLoader interface {
	LookupPrincipal(ctx context.Context, userID string) (*auth.Principal, error)
}

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	users    PrincipalLoader
	header   string
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, users PrincipalLoader, header string) *AuthMiddleware {
	if header == "" {
		header = "x-auth-token"
	}
	return &AuthMiddleware{tokenSvc: tokenSvc, users: users, header: header}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(m.header)
		if token == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No token, authorization denied", nil)
			return
		}

		claims, err := m.tokenSvc.Resolve(token)
		if err != nil {
			msg := "Token is not valid"
			if stderrors.Is(err, auth.ErrTokenExpired) {
				msg = "Token has expired"
			}
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeInvalidToken, msg, nil)
			return
		}

		principal, err := m.users.LookupPrincipal(r.Context(), claims.ID)
		if err != nil {
			errors.WriteDomainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Principal, principal)
		next(w, r.WithContext(ctx))
	}
}
