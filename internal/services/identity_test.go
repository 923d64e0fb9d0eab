package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blueelephant/internal/domain"
)

var testRules = RoleRules{AdminEmail: "admin@aariasblueelephant.org", OrgDomain: "aariasblueelephant.org"}

func newTestResolver(client *fakeIdentityClient, profiles *fakeProfileRepo) *Resolver {
	if profiles == nil {
		profiles = &fakeProfileRepo{}
	}
	members := NewMemberCounter(profiles, DefaultMembersSeed, testLogger())
	return NewResolver(client, members, testRules, testLogger())
}

func googleSession(email string, metadata map[string]any, identities ...domain.ExternalIdentity) *domain.ExternalSession {
	return &domain.ExternalSession{
		AccessToken: "token",
		ExpiresAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		User: domain.ExternalUser{
			ID:           "google-123",
			Email:        email,
			UserMetadata: metadata,
			Identities:   identities,
		},
	}
}

func TestDeriveRole(t *testing.T) {
	tests := []struct {
		email string
		want  domain.Role
	}{
		{"admin@aariasblueelephant.org", domain.RoleBoardOwner},
		{"  Admin@AariasBlueElephant.org ", domain.RoleBoardOwner},
		{"staff@aariasblueelephant.org", domain.RoleBoardMember},
		{"STAFF@aariasblueelephant.ORG", domain.RoleBoardMember},
		{"donor1@example.com", domain.RoleUser},
		{"admin@aariasblueelephant.org.evil.com", domain.RoleUser},
		{"someone@notaariasblueelephant.org", domain.RoleUser},
		{"admin2@aariasblueelephant.org", domain.RoleBoardMember},
		{"", domain.RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveRole(tt.email, testRules))
		})
	}
}

func TestDeriveRole_NeverDonor(t *testing.T) {
	for _, email := range []string{"donor@example.com", "donor@aariasblueelephant.org", "admin@aariasblueelephant.org"} {
		assert.NotEqual(t, domain.RoleDonor, DeriveRole(email, testRules))
	}
}

func TestResolver_ResolveSession(t *testing.T) {
	tests := []struct {
		name    string
		session *domain.ExternalSession
		want    *domain.User
	}{
		{
			name:    "nil session signs out",
			session: nil,
			want:    nil,
		},
		{
			name:    "missing email is unauthenticated",
			session: googleSession("", map[string]any{"full_name": "Ghost"}),
			want:    nil,
		},
		{
			name:    "full name and metadata avatar",
			session: googleSession("staff@aariasblueelephant.org", map[string]any{"full_name": "Sam Staff", "name": "Sam", "avatar_url": "https://a/1.png", "picture": "https://a/2.png"}),
			want:    &domain.User{Email: "staff@aariasblueelephant.org", Name: "Sam Staff", Role: domain.RoleBoardMember, AvatarURL: "https://a/1.png"},
		},
		{
			name:    "name fallback and picture",
			session: googleSession("donor1@example.com", map[string]any{"name": "Dana", "picture": "https://a/p.png"}),
			want:    &domain.User{Email: "donor1@example.com", Name: "Dana", Role: domain.RoleUser, AvatarURL: "https://a/p.png"},
		},
		{
			name: "local part and identity avatar",
			session: googleSession("admin@aariasblueelephant.org", nil,
				domain.ExternalIdentity{Provider: "google", IdentityData: map[string]any{"sub": "1"}},
				domain.ExternalIdentity{Provider: "google", IdentityData: map[string]any{"picture": "https://a/id.png"}},
			),
			want: &domain.User{Email: "admin@aariasblueelephant.org", Name: "admin", Role: domain.RoleBoardOwner, AvatarURL: "https://a/id.png"},
		},
		{
			name:    "blank metadata values are skipped",
			session: googleSession("mike@example.com", map[string]any{"full_name": "  ", "avatar_url": 42}),
			want:    &domain.User{Email: "mike@example.com", Name: "mike", Role: domain.RoleUser},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(newFakeIdentityClient(), nil)
			require.True(t, r.IsLoading())

			res := r.ResolveSession(tt.session)
			assert.Equal(t, tt.want, res.User)
			assert.Equal(t, tt.want, r.CurrentUser())
			assert.False(t, r.IsLoading())
		})
	}
}

func TestResolver_ResolveSessionIsIdempotent(t *testing.T) {
	r := newTestResolver(newFakeIdentityClient(), nil)
	s := googleSession("staff@aariasblueelephant.org", map[string]any{"full_name": "Sam"})

	first := r.ResolveSession(s)
	second := r.ResolveSession(s)
	assert.Equal(t, first, second)
	assert.Equal(t, first.User, r.CurrentUser())
}

func TestResolver_ReturnToConsumedOnce(t *testing.T) {
	client := newFakeIdentityClient()
	r := newTestResolver(client, nil)
	r.ResolveSession(nil)

	url, err := r.BeginLogin(context.Background(), "/events/ev-1")
	require.NoError(t, err)
	assert.Equal(t, client.signInURL, url)

	// A signed-out notification does not consume the stash.
	assert.Empty(t, r.ResolveSession(nil).ReturnTo)

	s := googleSession("mike@example.com", nil)
	assert.Equal(t, "/events/ev-1", r.ResolveSession(s).ReturnTo)
	assert.Empty(t, r.ResolveSession(s).ReturnTo)
}

func TestResolver_BeginLoginFailure(t *testing.T) {
	client := newFakeIdentityClient()
	client.signInErr = errors.New("provider unreachable")
	r := newTestResolver(client, nil)
	s := googleSession("mike@example.com", nil)
	r.ResolveSession(s)

	_, err := r.BeginLogin(context.Background(), "/dashboard")
	require.Error(t, err)
	assert.Equal(t, "mike@example.com", r.CurrentUser().Email)
}

func TestResolver_StartAndNotifications(t *testing.T) {
	client := newFakeIdentityClient()
	client.session = googleSession("staff@aariasblueelephant.org", map[string]any{"full_name": "Sam"})
	r := newTestResolver(client, nil)

	r.Start(context.Background())
	require.False(t, r.IsLoading())
	require.Equal(t, "Sam", r.CurrentUser().Name)
	require.Equal(t, 1, client.listenerCount())

	client.emit(domain.AuthEventUserUpdated, googleSession("staff@aariasblueelephant.org", map[string]any{"full_name": "Samantha"}))
	assert.Equal(t, "Samantha", r.CurrentUser().Name)

	require.NoError(t, r.EndSession(context.Background()))
	assert.Nil(t, r.CurrentUser())

	r.Close()
	assert.Equal(t, 0, client.listenerCount())
}

func TestResolver_StartWithSessionError(t *testing.T) {
	client := newFakeIdentityClient()
	client.sessionErr = errors.New("network down")
	r := newTestResolver(client, nil)

	r.Start(context.Background())
	assert.False(t, r.IsLoading())
	assert.Nil(t, r.CurrentUser())
}

func TestResolver_NotificationStashesRedirect(t *testing.T) {
	client := newFakeIdentityClient()
	r := newTestResolver(client, nil)
	r.Start(context.Background())

	_, err := r.BeginLogin(context.Background(), "/dashboard/testimonials")
	require.NoError(t, err)

	client.emit(domain.AuthEventSignedIn, googleSession("mike@example.com", nil))
	assert.Equal(t, "/dashboard/testimonials", r.TakeRedirect())
	assert.Empty(t, r.TakeRedirect())
}

func TestResolver_CompleteLogin(t *testing.T) {
	t.Run("returns stashed path", func(t *testing.T) {
		client := newFakeIdentityClient()
		client.completed = googleSession("mike@example.com", map[string]any{"name": "Mike"})
		r := newTestResolver(client, nil)

		_, err := r.BeginLogin(context.Background(), "/events/ev-2")
		require.NoError(t, err)

		res, err := r.CompleteLogin(context.Background(), "code", "state")
		require.NoError(t, err)
		assert.Equal(t, "Mike", res.User.Name)
		assert.Equal(t, "/events/ev-2", res.ReturnTo)
	})

	t.Run("session without email", func(t *testing.T) {
		client := newFakeIdentityClient()
		client.completed = googleSession("", nil)
		r := newTestResolver(client, nil)

		_, err := r.CompleteLogin(context.Background(), "code", "state")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("exchange failure", func(t *testing.T) {
		client := newFakeIdentityClient()
		client.completeErr = domain.ErrInvalidSession
		r := newTestResolver(client, nil)

		_, err := r.CompleteLogin(context.Background(), "code", "bad-state")
		require.ErrorIs(t, err, domain.ErrInvalidSession)
		assert.Nil(t, r.CurrentUser())
	})
}

func TestResolver_UpdateProfile(t *testing.T) {
	t.Run("no user is a no-op", func(t *testing.T) {
		client := newFakeIdentityClient()
		r := newTestResolver(client, nil)
		r.ResolveSession(nil)

		name := "Nobody"
		r.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &name})
		assert.Nil(t, r.CurrentUser())
		assert.Empty(t, client.metadata)
	})

	t.Run("merges locally and mirrors the name", func(t *testing.T) {
		client := newFakeIdentityClient()
		client.metadataErr = errors.New("provider rejected")
		r := newTestResolver(client, nil)
		r.ResolveSession(googleSession("mike@example.com", map[string]any{"name": "Mike"}))

		name, avatar := "Michael", "https://a/new.png"
		r.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &name, AvatarURL: &avatar})

		u := r.CurrentUser()
		assert.Equal(t, "Michael", u.Name)
		assert.Equal(t, "https://a/new.png", u.AvatarURL)
		assert.Equal(t, domain.RoleUser, u.Role)

		select {
		case data := <-client.metadata:
			assert.Equal(t, map[string]any{"full_name": "Michael"}, data)
		case <-time.After(time.Second):
			t.Fatal("metadata update was not sent")
		}
	})

	t.Run("avatar only stays local", func(t *testing.T) {
		client := newFakeIdentityClient()
		r := newTestResolver(client, nil)
		r.ResolveSession(googleSession("mike@example.com", nil))

		avatar := "https://a/new.png"
		r.UpdateProfile(context.Background(), domain.ProfileUpdate{AvatarURL: &avatar})
		assert.Equal(t, "https://a/new.png", r.CurrentUser().AvatarURL)
		assert.Empty(t, client.metadata)
	})
}

func TestResolver_FetchTotalMembers(t *testing.T) {
	profiles := &fakeProfileRepo{countErr: errors.New("network down")}
	r := newTestResolver(newFakeIdentityClient(), profiles)

	r.FetchTotalMembers(context.Background())
	assert.Equal(t, int64(DefaultMembersSeed), r.TotalMembers())

	profiles.countErr = nil
	profiles.count = 212
	r.FetchTotalMembers(context.Background())
	assert.Equal(t, int64(212), r.TotalMembers())

	profiles.countErr = errors.New("timeout")
	r.FetchTotalMembers(context.Background())
	assert.Equal(t, int64(212), r.TotalMembers())
}
