package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"blueelephant/internal/domain"
)

// RoleRules holds the addresses that grant board roles.
type RoleRules struct {
	AdminEmail string
	OrgDomain  string
}

// DeriveRole maps an email to its role tier. Only the exact admin address is
// an owner, only addresses in the organisation domain are board members, and
// everyone else is a User. Donor is never derived.
func DeriveRole(email string, rules RoleRules) domain.Role {
	email = normalizeEmail(email)
	admin := normalizeEmail(rules.AdminEmail)
	if admin != "" && email == admin {
		return domain.RoleBoardOwner
	}
	orgDomain := strings.TrimPrefix(normalizeEmail(rules.OrgDomain), "@")
	if orgDomain != "" && strings.HasSuffix(email, "@"+orgDomain) {
		return domain.RoleBoardMember
	}
	return domain.RoleUser
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolver turns one browser's identity-provider session into a domain.User.
// It is created by SessionRegistry and lives as long as the browser session.
type Resolver struct {
	client  domain.IdentityClient
	members *MemberCounter
	rules   RoleRules
	logger  *slog.Logger

	mu          sync.Mutex
	user        *domain.User
	loading     bool
	returnTo    string
	redirect    string
	unsubscribe func()
}

var _ domain.IdentityResolver = (*Resolver)(nil)

func NewResolver(client domain.IdentityClient, members *MemberCounter, rules RoleRules, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:  client,
		members: members,
		rules:   rules,
		logger:  logger,
		loading: true,
	}
}

// Start resolves the client's current session and then follows its
// session-change notifications. Both paths go through ResolveSession.
func (r *Resolver) Start(ctx context.Context) {
	session, err := r.client.Session(ctx)
	if err != nil {
		r.logger.Error("load persisted session", "error", err)
		session = nil
	}
	r.ResolveSession(session)

	unsubscribe := r.client.OnAuthStateChange(r.handleAuthEvent)
	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()
}

// Close stops listening for session changes.
func (r *Resolver) Close() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (r *Resolver) handleAuthEvent(event domain.AuthEvent, session *domain.ExternalSession) {
	r.logger.Debug("auth state change", "event", event)
	res := r.ResolveSession(session)
	if res.ReturnTo != "" {
		r.mu.Lock()
		r.redirect = res.ReturnTo
		r.mu.Unlock()
	}
}

// ResolveSession derives the current user from s. A nil session, or one
// without an email, leaves the visitor signed out. A stashed return-to path
// is handed out by the first resolution that yields a user and then cleared.
func (r *Resolver) ResolveSession(s *domain.ExternalSession) domain.Resolution {
	user := r.deriveUser(s)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.user = user
	r.loading = false
	if user == nil {
		return domain.Resolution{}
	}
	u := *user
	res := domain.Resolution{User: &u}
	if r.returnTo != "" {
		res.ReturnTo = r.returnTo
		r.returnTo = ""
	}
	return res
}

func (r *Resolver) deriveUser(s *domain.ExternalSession) *domain.User {
	if s == nil {
		return nil
	}
	email := strings.TrimSpace(s.User.Email)
	if email == "" {
		r.logger.Warn("session has no email, treating as signed out", "provider_user_id", s.User.ID)
		return nil
	}
	return &domain.User{
		Email:     email,
		Name:      displayName(s.User),
		Role:      DeriveRole(email, r.rules),
		AvatarURL: avatarURL(s.User),
	}
}

func displayName(u domain.ExternalUser) string {
	for _, key := range []string{"full_name", "name"} {
		if v := metadataString(u.UserMetadata, key); v != "" {
			return v
		}
	}
	local, _, _ := strings.Cut(strings.TrimSpace(u.Email), "@")
	return local
}

// avatarURL probes the user metadata first, then each linked identity.
func avatarURL(u domain.ExternalUser) string {
	keys := []string{"avatar_url", "picture"}
	for _, key := range keys {
		if v := metadataString(u.UserMetadata, key); v != "" {
			return v
		}
	}
	for _, identity := range u.Identities {
		for _, key := range keys {
			if v := metadataString(identity.IdentityData, key); v != "" {
				return v
			}
		}
	}
	return ""
}

func metadataString(m map[string]any, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// BeginLogin stashes returnTo and returns the provider URL that starts
// sign-in. On failure the error is logged and returned; nothing else changes.
func (r *Resolver) BeginLogin(ctx context.Context, returnTo string) (string, error) {
	r.mu.Lock()
	r.returnTo = returnTo
	r.mu.Unlock()

	url, err := r.client.SignInURL(ctx)
	if err != nil {
		r.logger.Error("begin login", "error", err)
		return "", fmt.Errorf("begin login: %w", err)
	}
	return url, nil
}

// CompleteLogin finishes the provider callback and returns the resolved user
// together with the return-to path, if one was stashed.
func (r *Resolver) CompleteLogin(ctx context.Context, code, state string) (domain.Resolution, error) {
	session, err := r.client.CompleteSignIn(ctx, code, state)
	if err != nil {
		r.logger.Error("complete login", "error", err)
		return domain.Resolution{}, fmt.Errorf("complete login: %w", err)
	}
	res := r.ResolveSession(session)
	if res.User == nil {
		return res, domain.ErrUnauthorized
	}
	if res.ReturnTo == "" {
		res.ReturnTo = r.TakeRedirect()
	}
	return res, nil
}

// TakeRedirect returns the return-to path consumed by a notification-driven
// resolution, once.
func (r *Resolver) TakeRedirect() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	to := r.redirect
	r.redirect = ""
	return to
}

// EndSession signs out at the provider. The current user is cleared when the
// resulting SIGNED_OUT notification is resolved, not here.
func (r *Resolver) EndSession(ctx context.Context) error {
	if err := r.client.SignOut(ctx); err != nil {
		r.logger.Error("end session", "error", err)
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// UpdateProfile merges p into the current user. A new name is also written to
// the provider in the background; failures there are only logged and the
// next session resolution reconciles the local copy.
func (r *Resolver) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) {
	r.mu.Lock()
	if r.user == nil {
		r.mu.Unlock()
		return
	}
	r.user.Apply(p)
	r.mu.Unlock()

	if p.Name == nil {
		return
	}
	name := *p.Name
	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := r.client.UpdateUserMetadata(ctx, map[string]any{"full_name": name}); err != nil {
			r.logger.Error("update provider metadata", "error", err)
		}
	}()
}

// FetchTotalMembers refreshes the shared member count.
func (r *Resolver) FetchTotalMembers(ctx context.Context) {
	r.members.Refresh(ctx)
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (r *Resolver) CurrentUser() *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.user == nil {
		return nil
	}
	u := *r.user
	return &u
}

func (r *Resolver) IsLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

func (r *Resolver) TotalMembers() int64 {
	return r.members.Value()
}
