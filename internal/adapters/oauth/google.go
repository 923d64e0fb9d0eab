package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"blueelephant/internal/domain"
)

const (
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	// DefaultSessionTTL is how long a browser stays signed in without activity.
	DefaultSessionTTL = 7 * 24 * time.Hour
	providerName      = "google"
)

// Config configures the Google sign-in provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
	SessionTTL  time.Duration
	// HTTPClient is used for token exchange and userinfo calls when set.
	HTTPClient *http.Client
}

// Provider holds what every browser session's Client shares.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	ttl         time.Duration
	httpClient  *http.Client
	signer      domain.StateSigner
	profiles    domain.ProfileRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewProvider(cfg Config, signer domain.StateSigner, profiles domain.ProfileRepository, logger *slog.Logger) *Provider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoint,
		},
		userInfoURL: userInfoURL,
		ttl:         ttl,
		httpClient:  cfg.HTTPClient,
		signer:      signer,
		profiles:    profiles,
		logger:      logger,
		now:         time.Now,
	}
}

// NewClient returns the identity client for one browser session. It matches
// services.IdentityClientFactory.
func (p *Provider) NewClient(sid string, persisted *domain.ExternalSession) domain.IdentityClient {
	return newClient(p, sid, persisted)
}

func (p *Provider) context(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
}

// fetchUserInfo returns the typed fields and the raw payload, which becomes
// the identity's data.
func (p *Provider) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, map[string]any, error) {
	client := p.oauth.Client(p.context(ctx), token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read user info: %w", err)
	}
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, raw, nil
}

// signIn exchanges code for a token, reads the Google profile and records the
// member. The stored display name wins over Google's so renames survive
// later sign-ins.
func (p *Provider) signIn(ctx context.Context, code string) (*domain.ExternalSession, error) {
	token, err := p.oauth.Exchange(p.context(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	info, raw, err := p.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" || !info.EmailVerified {
		return nil, fmt.Errorf("%w: google account has no verified email", domain.ErrUnauthorized)
	}

	name := info.Name
	now := p.now()
	profile := &domain.Profile{Email: email, DisplayName: info.Name, AvatarURL: info.Picture, CreatedAt: now, UpdatedAt: now}
	if err := p.profiles.Upsert(ctx, profile); err != nil {
		p.logger.Error("record member profile", "email", email, "error", err)
	} else if profile.DisplayName != "" {
		name = profile.DisplayName
	}

	metadata := map[string]any{"email": email, "picture": info.Picture}
	if name != "" {
		metadata["full_name"] = name
	}
	if info.GivenName != "" {
		metadata["name"] = info.GivenName
	}
	return &domain.ExternalSession{
		AccessToken: token.AccessToken,
		ExpiresAt:   now.Add(p.ttl),
		User: domain.ExternalUser{
			ID:           info.ID,
			Email:        email,
			UserMetadata: metadata,
			Identities:   []domain.ExternalIdentity{{Provider: providerName, IdentityData: raw}},
		},
	}, nil
}

// withMetadata returns a copy of s with data merged into the user metadata.
func withMetadata(s *domain.ExternalSession, data map[string]any) *domain.ExternalSession {
	cp := *s
	cp.User.UserMetadata = maps.Clone(s.User.UserMetadata)
	if cp.User.UserMetadata == nil {
		cp.User.UserMetadata = make(map[string]any, len(data))
	}
	maps.Copy(cp.User.UserMetadata, data)
	return &cp
}
