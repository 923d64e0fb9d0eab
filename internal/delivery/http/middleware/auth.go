package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	h "blueelephant/internal/delivery/http/helpers"
	"blueelephant/internal/domain"
)

type contextKey string

const (
	sessionIDKey contextKey = "sessionID"
	resolverKey  contextKey = "resolver"
)

// WithIdentity returns a context carrying the browser session id and its resolver.
// Used by the session loader.
func WithIdentity(ctx context.Context, sid string, r domain.IdentityResolver) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sid)
	return context.WithValue(ctx, resolverKey, r)
}

// ResolverFromContext returns the visitor's identity resolver, if they have a browser session.
func ResolverFromContext(ctx context.Context) (domain.IdentityResolver, bool) {
	r, ok := ctx.Value(resolverKey).(domain.IdentityResolver)
	return r, ok && r != nil
}

// SessionIDFromContext returns the browser session id, if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}

// UserFromContext returns the signed-in user, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	r, ok := ResolverFromContext(ctx)
	if !ok {
		return nil, false
	}
	u := r.CurrentUser()
	return u, u != nil
}

// RequireSignedIn responds 401 unless the request carries a signed-in user.
func RequireSignedIn(logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return RequireRole(logger)
}

// RequireRole responds 401 when nobody is signed in and 403 when the user's
// role is not one of roles. With no roles, any signed-in user passes.
func RequireRole(logger *slog.Logger, roles ...domain.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "sign in required")
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, user.Role) {
				logger.WarnContext(r.Context(), "role denied", "path", r.URL.Path, "email", user.Email, "role", user.Role)
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "insufficient role")
				return
			}
			next(w, r)
		}
	}
}

// BoardRoles may manage site content.
var BoardRoles = []domain.Role{domain.RoleBoardOwner, domain.RoleBoardMember}

// DashboardRoles may open the member dashboard.
var DashboardRoles = []domain.Role{domain.RoleBoardOwner, domain.RoleBoardMember, domain.RoleDonor, domain.RoleUser}
