package middleware

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"

	"blueelephant/internal/domain"
)

const (
	// SessionCookieName names the browser session cookie.
	SessionCookieName = "blueelephant_session"

	cookieSIDKey      = "sid"
	cookieProviderKey = "provider_session"
)

// NewCookieStore returns a signed and encrypted cookie store for browser
// sessions. The HMAC and AES-256 keys are both derived from secret with HKDF.
func NewCookieStore(secret []byte, secure bool, maxAge time.Duration) (*sessions.CookieStore, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("cookie store: empty secret")
	}
	hashKey, err := deriveKey(secret, "cookie-hash", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "cookie-block", 32)
	if err != nil {
		return nil, err
	}
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(maxAge.Seconds()))
	return store, nil
}

func deriveKey(secret []byte, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// SessionLoader connects the browser cookie to the session directory.
type SessionLoader struct {
	store     sessions.Store
	directory domain.SessionDirectory
	logger    *slog.Logger
}

func NewSessionLoader(store sessions.Store, directory domain.SessionDirectory, logger *slog.Logger) *SessionLoader {
	return &SessionLoader{store: store, directory: directory, logger: logger}
}

// Load puts the visitor's resolver into the request context when their
// cookie names a known, or restorable, browser session.
func (l *SessionLoader) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := l.store.Get(r, SessionCookieName)
		if err != nil {
			l.logger.DebugContext(r.Context(), "ignoring unreadable session cookie", "error", err)
		}
		if sid, _ := sess.Values[cookieSIDKey].(string); sid != "" {
			persisted := l.decodeProviderSession(sess.Values[cookieProviderKey])
			if res, ok := l.directory.Lookup(r.Context(), sid, persisted); ok {
				r = r.WithContext(WithIdentity(r.Context(), sid, res))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Open returns the visitor's resolver, starting a browser session and
// setting the cookie when the request has none.
func (l *SessionLoader) Open(w http.ResponseWriter, r *http.Request) (string, domain.IdentityResolver, error) {
	if res, ok := ResolverFromContext(r.Context()); ok {
		sid, _ := SessionIDFromContext(r.Context())
		return sid, res, nil
	}
	sid, res := l.directory.Open(r.Context())
	sess, _ := l.store.Get(r, SessionCookieName)
	sess.Values[cookieSIDKey] = sid
	delete(sess.Values, cookieProviderKey)
	if err := sess.Save(r, w); err != nil {
		return "", nil, fmt.Errorf("save session cookie: %w", err)
	}
	return sid, res, nil
}

// Persist stores the provider session for sid in the cookie so the browser
// stays signed in across restarts. A signed-out session clears it.
func (l *SessionLoader) Persist(w http.ResponseWriter, r *http.Request, sid string) error {
	s, err := l.directory.Session(r.Context(), sid)
	if err != nil {
		return fmt.Errorf("read provider session: %w", err)
	}
	sess, _ := l.store.Get(r, SessionCookieName)
	sess.Values[cookieSIDKey] = sid
	if s == nil {
		delete(sess.Values, cookieProviderKey)
	} else {
		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode provider session: %w", err)
		}
		sess.Values[cookieProviderKey] = string(raw)
	}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

func (l *SessionLoader) decodeProviderSession(v any) *domain.ExternalSession {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return nil
	}
	var s domain.ExternalSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		l.logger.Warn("discarding malformed provider session", "error", err)
		return nil
	}
	return &s
}
