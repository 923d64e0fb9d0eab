package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"blueelephant/internal/delivery/http/middleware"
	"blueelephant/internal/domain"
)

// DefaultLandingPath is where a completed sign-in lands without a return path.
const DefaultLandingPath = "/dashboard"

// BrowserSessions opens and persists the cookie-backed browser session.
// Implemented by middleware.SessionLoader.
type BrowserSessions interface {
	Open(w http.ResponseWriter, r *http.Request) (string, domain.IdentityResolver, error)
	Persist(w http.ResponseWriter, r *http.Request, sid string) error
}

type AuthController struct {
	Logger   *slog.Logger
	Sessions BrowserSessions
}

func NewAuthController(logger *slog.Logger, sessions BrowserSessions) *AuthController {
	return &AuthController{
		Logger:   logger,
		Sessions: sessions,
	}
}

// Login godoc
// @Summary Start Google sign-in
// @Description Starts the OAuth flow for this browser session and redirects to Google. The optional return path is where the browser lands after sign-in; only same-site paths are honoured.
// @Tags auth
// @Param return query string false "Same-site path to land on after sign-in"
// @Success 302 "Redirect to the identity provider"
// @Failure 302 "Redirect to /login?error=... on failure"
// @Router /auth/login [get]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	_, res, err := c.Sessions.Open(w, r)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "open browser session", "err", err)
		redirectLoginError(w, r, "internal")
		return
	}
	authURL, err := res.BeginLogin(r.Context(), safeReturnPath(r.URL.Query().Get("return")))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "begin login", "err", err)
		redirectLoginError(w, r, "unavailable")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback godoc
// @Summary Complete Google sign-in
// @Description Provider callback. Exchanges the code, persists the session in the browser cookie and redirects to the stashed return path, or /dashboard.
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "Signed OAuth state"
// @Success 302 "Redirect to the return path"
// @Failure 302 "Redirect to /login?error=... on failure"
// @Router /auth/callback [get]
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		c.Logger.WarnContext(r.Context(), "provider returned error", "error", e, "description", q.Get("error_description"))
		redirectLoginError(w, r, "access_denied")
		return
	}
	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" {
		redirectLoginError(w, r, "invalid_state")
		return
	}
	res, ok := middleware.ResolverFromContext(r.Context())
	sid, _ := middleware.SessionIDFromContext(r.Context())
	if !ok {
		c.Logger.WarnContext(r.Context(), "callback without browser session")
		redirectLoginError(w, r, "invalid_state")
		return
	}

	resolution, err := res.CompleteLogin(r.Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSession):
			redirectLoginError(w, r, "invalid_state")
		case errors.Is(err, domain.ErrUnauthorized):
			redirectLoginError(w, r, "unauthorized")
		default:
			c.Logger.ErrorContext(r.Context(), "complete login", "err", err)
			redirectLoginError(w, r, "sign_in_failed")
		}
		return
	}
	if err := c.Sessions.Persist(w, r, sid); err != nil {
		c.Logger.ErrorContext(r.Context(), "persist browser session", "err", err)
		redirectLoginError(w, r, "internal")
		return
	}
	c.Logger.InfoContext(r.Context(), "user signed in", "email", resolution.User.Email, "role", resolution.User.Role)

	dest := resolution.ReturnTo
	if dest == "" {
		dest = DefaultLandingPath
	}
	http.Redirect(w, r, dest, http.StatusFound)
}

// Logout godoc
// @Summary Sign out
// @Description Ends the provider session for this browser and clears it from the cookie. Succeeds when nobody is signed in.
// @Tags auth
// @Success 204 "Signed out"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.ResolverFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sid, _ := middleware.SessionIDFromContext(r.Context())
	if err := res.EndSession(r.Context()); err != nil {
		writeInternal(w, r, c.Logger, err)
		return
	}
	if err := c.Sessions.Persist(w, r, sid); err != nil {
		writeInternal(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// safeReturnPath keeps only same-site absolute paths.
func safeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return p
}

func redirectLoginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(code), http.StatusFound)
}
