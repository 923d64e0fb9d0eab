package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"blueelephant/internal/adapters/auth"
	"blueelephant/internal/domain"
)

type fakeProfiles struct {
	mu        sync.Mutex
	stored    map[string]string
	upserted  []domain.Profile
	upsertErr error
	renameErr error
	renamed   map[string]string
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{stored: map[string]string{}, renamed: map[string]string{}}
}

func (f *fakeProfiles) Upsert(ctx context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, *p)
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if name, ok := f.stored[p.Email]; ok {
		p.DisplayName = name
	}
	return nil
}

func (f *fakeProfiles) UpdateDisplayName(ctx context.Context, email, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renameErr != nil {
		return f.renameErr
	}
	f.renamed[email] = name
	return nil
}

func (f *fakeProfiles) Count(ctx context.Context) (int64, error) { return int64(len(f.stored)), nil }

type googleStub struct {
	server   *httptest.Server
	userInfo map[string]any
	status   int
}

func newGoogleStub(t *testing.T) *googleStub {
	g := &googleStub{
		status: http.StatusOK,
		userInfo: map[string]any{
			"id":             "1234567890",
			"email":          "Mike@Example.com",
			"verified_email": true,
			"name":           "Mike Jones",
			"given_name":     "Mike",
			"picture":        "https://lh3.googleusercontent.com/a/mike",
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(g.status)
		_ = json.NewEncoder(w).Encode(g.userInfo)
	})
	g.server = httptest.NewServer(mux)
	t.Cleanup(g.server.Close)
	return g
}

func newTestProvider(g *googleStub, profiles *fakeProfiles) *Provider {
	return NewProvider(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   g.server.URL + "/auth",
			TokenURL:  g.server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: g.server.URL + "/userinfo",
		HTTPClient:  g.server.Client(),
	}, auth.NewStateSigner("state-secret", time.Minute), profiles, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// recorder collects notifications delivered to a listener.
type recorder struct {
	ch chan notification
}

func listen(c domain.IdentityClient) (*recorder, func()) {
	r := &recorder{ch: make(chan notification, 8)}
	unsubscribe := c.OnAuthStateChange(func(e domain.AuthEvent, s *domain.ExternalSession) {
		r.ch <- notification{event: e, session: s}
	})
	return r, unsubscribe
}

func (r *recorder) next(t *testing.T) notification {
	t.Helper()
	select {
	case n := <-r.ch:
		return n
	case <-time.After(time.Second):
		t.Fatal("no notification delivered")
		return notification{}
	}
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestClient_SignInFlow(t *testing.T) {
	g := newGoogleStub(t)
	profiles := newFakeProfiles()
	c := newTestProvider(g, profiles).NewClient("sid-1", nil)
	rec, _ := listen(c)
	ctx := context.Background()

	authURL, err := c.SignInURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, authURL, g.server.URL+"/auth?")
	assert.Contains(t, authURL, "client_id=client-id")

	session, err := c.CompleteSignIn(ctx, "good-code", stateFrom(t, authURL))
	require.NoError(t, err)
	assert.Equal(t, "mike@example.com", session.User.Email)
	assert.Equal(t, "Mike Jones", session.User.UserMetadata["full_name"])
	assert.Equal(t, "Mike", session.User.UserMetadata["name"])
	require.Len(t, session.User.Identities, 1)
	assert.Equal(t, "https://lh3.googleusercontent.com/a/mike", session.User.Identities[0].IdentityData["picture"])
	assert.Equal(t, "access-1", session.AccessToken)

	require.Len(t, profiles.upserted, 1)
	assert.Equal(t, "mike@example.com", profiles.upserted[0].Email)

	n := rec.next(t)
	assert.Equal(t, domain.AuthEventSignedIn, n.event)
	assert.Same(t, session, n.session)

	current, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Same(t, session, current)
}

func TestClient_StoredDisplayNameWins(t *testing.T) {
	g := newGoogleStub(t)
	profiles := newFakeProfiles()
	profiles.stored["mike@example.com"] = "Michael"
	c := newTestProvider(g, profiles).NewClient("sid-1", nil)

	authURL, err := c.SignInURL(context.Background())
	require.NoError(t, err)
	session, err := c.CompleteSignIn(context.Background(), "good-code", stateFrom(t, authURL))
	require.NoError(t, err)
	assert.Equal(t, "Michael", session.User.UserMetadata["full_name"])
}

func TestClient_CompleteSignInRejects(t *testing.T) {
	g := newGoogleStub(t)
	provider := newTestProvider(g, newFakeProfiles())
	ctx := context.Background()

	t.Run("state from another session", func(t *testing.T) {
		other, err := provider.NewClient("sid-other", nil).SignInURL(ctx)
		require.NoError(t, err)
		_, err = provider.NewClient("sid-1", nil).CompleteSignIn(ctx, "good-code", stateFrom(t, other))
		require.ErrorIs(t, err, domain.ErrInvalidSession)
	})

	t.Run("bad code", func(t *testing.T) {
		c := provider.NewClient("sid-1", nil)
		authURL, err := c.SignInURL(ctx)
		require.NoError(t, err)
		_, err = c.CompleteSignIn(ctx, "bad-code", stateFrom(t, authURL))
		require.Error(t, err)
		s, _ := c.Session(ctx)
		assert.Nil(t, s)
	})

	t.Run("unverified email", func(t *testing.T) {
		g.userInfo["verified_email"] = false
		defer func() { g.userInfo["verified_email"] = true }()

		c := provider.NewClient("sid-1", nil)
		authURL, err := c.SignInURL(ctx)
		require.NoError(t, err)
		_, err = c.CompleteSignIn(ctx, "good-code", stateFrom(t, authURL))
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("userinfo failure", func(t *testing.T) {
		g.status = http.StatusInternalServerError
		defer func() { g.status = http.StatusOK }()

		c := provider.NewClient("sid-1", nil)
		authURL, err := c.SignInURL(ctx)
		require.NoError(t, err)
		_, err = c.CompleteSignIn(ctx, "good-code", stateFrom(t, authURL))
		require.Error(t, err)
	})
}

func TestClient_SignInURLNotConfigured(t *testing.T) {
	p := NewProvider(Config{}, auth.NewStateSigner("s", time.Minute), newFakeProfiles(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := p.NewClient("sid-1", nil).SignInURL(context.Background())
	require.Error(t, err)
}

func TestClient_SessionLifetime(t *testing.T) {
	g := newGoogleStub(t)
	provider := newTestProvider(g, newFakeProfiles())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }
	ctx := context.Background()

	persisted := &domain.ExternalSession{
		AccessToken: "t",
		ExpiresAt:   now.Add(DefaultSessionTTL),
		User:        domain.ExternalUser{Email: "mike@example.com"},
	}
	c := provider.NewClient("sid-1", persisted)
	rec, _ := listen(c)

	s, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Same(t, persisted, s)

	now = now.Add(DefaultSessionTTL - time.Hour)
	s, err = c.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultSessionTTL), s.ExpiresAt)
	assert.Equal(t, domain.AuthEventTokenRefreshed, rec.next(t).event)

	now = now.Add(DefaultSessionTTL)
	s, err = c.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestClient_UpdateUserMetadata(t *testing.T) {
	g := newGoogleStub(t)
	profiles := newFakeProfiles()
	provider := newTestProvider(g, profiles)
	ctx := context.Background()

	t.Run("signed out", func(t *testing.T) {
		err := provider.NewClient("sid-1", nil).UpdateUserMetadata(ctx, map[string]any{"full_name": "X"})
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("writes the profile and announces the change", func(t *testing.T) {
		persisted := &domain.ExternalSession{
			ExpiresAt: time.Now().Add(DefaultSessionTTL),
			User:      domain.ExternalUser{Email: "mike@example.com", UserMetadata: map[string]any{"full_name": "Mike"}},
		}
		c := provider.NewClient("sid-1", persisted)
		rec, _ := listen(c)

		require.NoError(t, c.UpdateUserMetadata(ctx, map[string]any{"full_name": "Michael"}))
		assert.Equal(t, "Michael", profiles.renamed["mike@example.com"])

		n := rec.next(t)
		assert.Equal(t, domain.AuthEventUserUpdated, n.event)
		assert.Equal(t, "Michael", n.session.User.UserMetadata["full_name"])
		assert.Equal(t, "Mike", persisted.User.UserMetadata["full_name"])
	})

	t.Run("profile write failure", func(t *testing.T) {
		profiles.renameErr = errors.New("permission denied")
		defer func() { profiles.renameErr = nil }()

		c := provider.NewClient("sid-1", &domain.ExternalSession{
			ExpiresAt: time.Now().Add(DefaultSessionTTL),
			User:      domain.ExternalUser{Email: "mike@example.com"},
		})
		require.Error(t, c.UpdateUserMetadata(ctx, map[string]any{"full_name": "Michael"}))
	})
}

func TestClient_NotificationsAreOrdered(t *testing.T) {
	g := newGoogleStub(t)
	c := newTestProvider(g, newFakeProfiles()).NewClient("sid-1", &domain.ExternalSession{
		ExpiresAt: time.Now().Add(DefaultSessionTTL),
		User:      domain.ExternalUser{Email: "mike@example.com"},
	})
	rec, unsubscribe := listen(c)
	ctx := context.Background()

	require.NoError(t, c.UpdateUserMetadata(ctx, map[string]any{"full_name": "A"}))
	require.NoError(t, c.SignOut(ctx))

	assert.Equal(t, domain.AuthEventUserUpdated, rec.next(t).event)
	n := rec.next(t)
	assert.Equal(t, domain.AuthEventSignedOut, n.event)
	assert.Nil(t, n.session)

	unsubscribe()
	require.NoError(t, c.SignOut(ctx))
	select {
	case <-rec.ch:
		t.Fatal("unsubscribed listener was called")
	case <-time.After(50 * time.Millisecond):
	}
}
