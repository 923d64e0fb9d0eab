package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"blueelephant/internal/domain"
)

// IdentityClientFactory builds the provider client for one browser session.
// persisted is the session restored from the browser cookie, if any.
type IdentityClientFactory func(sid string, persisted *domain.ExternalSession) domain.IdentityClient

type sessionEntry struct {
	resolver *Resolver
	client   domain.IdentityClient
	lastSeen time.Time
}

// SessionRegistry keeps one Resolver per browser session id.
type SessionRegistry struct {
	newClient IdentityClientFactory
	members   *MemberCounter
	rules     RoleRules
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

var _ domain.SessionDirectory = (*SessionRegistry)(nil)

func NewSessionRegistry(newClient IdentityClientFactory, members *MemberCounter, rules RoleRules, logger *slog.Logger) *SessionRegistry {
	return &SessionRegistry{
		newClient: newClient,
		members:   members,
		rules:     rules,
		logger:    logger,
		now:       time.Now,
		entries:   make(map[string]*sessionEntry),
	}
}

// Open starts a new browser session and returns its id.
func (g *SessionRegistry) Open(ctx context.Context) (string, domain.IdentityResolver) {
	sid := uuid.NewString()
	return sid, g.start(ctx, sid, nil)
}

// Lookup returns the resolver for sid. An unknown sid is restored only when
// the browser still carries a persisted provider session.
func (g *SessionRegistry) Lookup(ctx context.Context, sid string, persisted *domain.ExternalSession) (domain.IdentityResolver, bool) {
	g.mu.Lock()
	if e, ok := g.entries[sid]; ok {
		e.lastSeen = g.now()
		g.mu.Unlock()
		return e.resolver, true
	}
	g.mu.Unlock()

	if persisted == nil {
		return nil, false
	}
	if _, err := uuid.Parse(sid); err != nil {
		return nil, false
	}
	return g.start(ctx, sid, persisted), true
}

// Session returns the provider's current session for sid, for persisting in
// the browser cookie.
func (g *SessionRegistry) Session(ctx context.Context, sid string) (*domain.ExternalSession, error) {
	g.mu.Lock()
	e, ok := g.entries[sid]
	g.mu.Unlock()
	if !ok {
		return nil, domain.ErrInvalidSession
	}
	return e.client.Session(ctx)
}

func (g *SessionRegistry) start(ctx context.Context, sid string, persisted *domain.ExternalSession) *Resolver {
	client := g.newClient(sid, persisted)
	resolver := NewResolver(client, g.members, g.rules, g.logger.With("sid", sid))
	resolver.Start(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.entries[sid]; ok {
		// Lost a race with a concurrent request for the same sid.
		resolver.Close()
		return e.resolver
	}
	g.entries[sid] = &sessionEntry{resolver: resolver, client: client, lastSeen: g.now()}
	activeSessions.Set(float64(len(g.entries)))
	return resolver
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were removed.
func (g *SessionRegistry) Sweep(maxIdle time.Duration) int {
	cutoff := g.now().Add(-maxIdle)
	var stale []*sessionEntry

	g.mu.Lock()
	for sid, e := range g.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e)
			delete(g.entries, sid)
		}
	}
	activeSessions.Set(float64(len(g.entries)))
	g.mu.Unlock()

	for _, e := range stale {
		e.resolver.Close()
	}
	return len(stale)
}

// Len returns the number of tracked sessions.
func (g *SessionRegistry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// Close stops every resolver.
func (g *SessionRegistry) Close() {
	g.mu.Lock()
	entries := g.entries
	g.entries = make(map[string]*sessionEntry)
	activeSessions.Set(0)
	g.mu.Unlock()

	for _, e := range entries {
		e.resolver.Close()
	}
}
