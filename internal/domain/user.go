package domain

import (
	"context"
	"time"
)

// Role is the application role tier derived from a user's email.
type Role string

const (
	RoleBoardOwner  Role = "BoardMember.Owner"
	RoleBoardMember Role = "BoardMember"
	RoleDonor       Role = "Donor"
	RoleUser        Role = "User"
)

// IsBoard reports whether the role may manage site content.
func (r Role) IsBoard() bool {
	return r == RoleBoardOwner || r == RoleBoardMember
}

// User is the application-level identity of the signed-in visitor.
// It is derived from the identity provider's session, never stored as-is.
// swagger:model User
type User struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar,omitempty"`
}

// ProfileUpdate is a partial User. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar"`
}

// Apply merges the non-nil fields of p into u.
func (u *User) Apply(p ProfileUpdate) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
}

// ExternalIdentity is one linked provider identity inside an external session.
type ExternalIdentity struct {
	Provider     string         `json:"provider"`
	IdentityData map[string]any `json:"identity_data"`
}

// ExternalUser is the user object carried by an identity-provider session.
// Field names and nesting vary by provider, so metadata is kept untyped.
type ExternalUser struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	UserMetadata map[string]any     `json:"user_metadata"`
	Identities   []ExternalIdentity `json:"identities"`
}

// ExternalSession is the opaque session payload produced by the identity provider.
type ExternalSession struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        ExternalUser `json:"user"`
}

// AuthEvent names a session-change notification.
type AuthEvent string

const (
	AuthEventInitialSession AuthEvent = "INITIAL_SESSION"
	AuthEventSignedIn       AuthEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	AuthEventUserUpdated    AuthEvent = "USER_UPDATED"
)

// AuthStateListener receives session-change notifications. session is nil after sign-out.
type AuthStateListener func(event AuthEvent, session *ExternalSession)

// IdentityClient is one browser session's handle on the identity provider.
// Implementations deliver notifications to listeners one at a time.
type IdentityClient interface {
	// Session returns the current persisted session, or nil when signed out.
	Session(ctx context.Context) (*ExternalSession, error)
	// SignInURL returns the provider URL that starts the OAuth flow.
	SignInURL(ctx context.Context) (string, error)
	// CompleteSignIn exchanges the provider callback's code and state for a
	// session and notifies listeners with SIGNED_IN.
	CompleteSignIn(ctx context.Context, code, state string) (*ExternalSession, error)
	// SignOut ends the session; listeners observe it asynchronously.
	SignOut(ctx context.Context) error
	// UpdateUserMetadata writes user metadata (e.g. full_name) on the provider side.
	UpdateUserMetadata(ctx context.Context, data map[string]any) error
	// OnAuthStateChange registers l and returns a function that removes it.
	OnAuthStateChange(l AuthStateListener) (unsubscribe func())
}

// Resolution is the outcome of resolving an external session.
// ReturnTo is non-empty at most once per stashed return-to path.
type Resolution struct {
	User     *User
	ReturnTo string
}

// Profile is a member row in the profiles collection.
type Profile struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileRepository stores member profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, p *Profile) error
	UpdateDisplayName(ctx context.Context, email, name string) error
	Count(ctx context.Context) (int64, error)
}

// StateSigner issues and checks the OAuth state parameter that ties a
// provider callback to the browser session that started it.
type StateSigner interface {
	Sign(sid string) (string, error)
	Verify(state, sid string) error
}

// IdentityResolver is one browser session's view of who is signed in.
type IdentityResolver interface {
	CurrentUser() *User
	IsLoading() bool
	TotalMembers() int64
	FetchTotalMembers(ctx context.Context)
	BeginLogin(ctx context.Context, returnTo string) (authURL string, err error)
	CompleteLogin(ctx context.Context, code, state string) (Resolution, error)
	EndSession(ctx context.Context) error
	UpdateProfile(ctx context.Context, p ProfileUpdate)
}

// SessionDirectory maps browser session ids to their resolvers.
type SessionDirectory interface {
	Open(ctx context.Context) (sid string, r IdentityResolver)
	Lookup(ctx context.Context, sid string, persisted *ExternalSession) (IdentityResolver, bool)
	// Session returns the provider session to persist for sid.
	Session(ctx context.Context, sid string) (*ExternalSession, error)
}
