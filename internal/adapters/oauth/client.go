package oauth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"blueelephant/internal/domain"
)

type notification struct {
	event   domain.AuthEvent
	session *domain.ExternalSession
}

type subscription struct {
	id       int
	listener domain.AuthStateListener
}

// Client is one browser session's view of the Google provider. Listeners are
// called on a background goroutine, one notification at a time, in order.
// Sessions are never mutated in place, so listeners may keep them.
type Client struct {
	provider *Provider
	sid      string

	mu        sync.Mutex
	session   *domain.ExternalSession
	subs      []subscription
	nextSubID int
	queue     []notification
	draining  bool
}

func newClient(p *Provider, sid string, persisted *domain.ExternalSession) *Client {
	return &Client{provider: p, sid: sid, session: persisted}
}

// Session returns the current session. An expired session is dropped; one
// past half its lifetime is extended and announced as TOKEN_REFRESHED.
func (c *Client) Session(ctx context.Context) (*domain.ExternalSession, error) {
	now := c.provider.now()

	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return nil, nil
	}
	if !now.Before(s.ExpiresAt) {
		c.session = nil
		c.mu.Unlock()
		return nil, nil
	}
	if s.ExpiresAt.Sub(now) > c.provider.ttl/2 {
		c.mu.Unlock()
		return s, nil
	}
	refreshed := *s
	refreshed.ExpiresAt = now.Add(c.provider.ttl)
	c.session = &refreshed
	c.mu.Unlock()

	c.notify(domain.AuthEventTokenRefreshed, &refreshed)
	return &refreshed, nil
}

func (c *Client) SignInURL(ctx context.Context) (string, error) {
	if c.provider.oauth.ClientID == "" {
		return "", fmt.Errorf("google sign-in is not configured")
	}
	state, err := c.provider.signer.Sign(c.sid)
	if err != nil {
		return "", err
	}
	return c.provider.oauth.AuthCodeURL(state), nil
}

func (c *Client) CompleteSignIn(ctx context.Context, code, state string) (*domain.ExternalSession, error) {
	if err := c.provider.signer.Verify(state, c.sid); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: missing code", domain.ErrInvalidInput)
	}
	session, err := c.provider.signIn(ctx, code)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.notify(domain.AuthEventSignedIn, session)
	return session, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.notify(domain.AuthEventSignedOut, nil)
	return nil
}

// UpdateUserMetadata stores full_name as the member's display name and
// announces the change as USER_UPDATED.
func (c *Client) UpdateUserMetadata(ctx context.Context, data map[string]any) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return domain.ErrUnauthorized
	}

	if name, ok := data["full_name"].(string); ok {
		if err := c.provider.profiles.UpdateDisplayName(ctx, s.User.Email, name); err != nil {
			return fmt.Errorf("update display name: %w", err)
		}
	}

	c.mu.Lock()
	if c.session != s {
		// Signed out or signed in again meanwhile.
		c.mu.Unlock()
		return nil
	}
	updated := withMetadata(s, data)
	c.session = updated
	c.mu.Unlock()

	c.notify(domain.AuthEventUserUpdated, updated)
	return nil
}

func (c *Client) OnAuthStateChange(l domain.AuthStateListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSubID++
	id := c.nextSubID
	c.subs = append(c.subs, subscription{id: id, listener: l})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Client) notify(event domain.AuthEvent, s *domain.ExternalSession) {
	c.mu.Lock()
	c.queue = append(c.queue, notification{event: event, session: s})
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	c.mu.Unlock()
	go c.drain()
}

func (c *Client) drain() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		n := c.queue[0]
		c.queue = c.queue[1:]
		subs := append([]subscription(nil), c.subs...)
		c.mu.Unlock()

		for _, s := range subs {
			s.listener(n.event, n.session)
		}
	}
}
