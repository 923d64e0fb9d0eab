package middleware

import (
	"context"
	"io"
	"log/slog"

	"blueelephant/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeResolver implements domain.IdentityResolver for tests.
type fakeResolver struct {
	user *domain.User
}

func (f *fakeResolver) CurrentUser() *domain.User            { return f.user }
func (f *fakeResolver) IsLoading() bool                      { return false }
func (f *fakeResolver) TotalMembers() int64                  { return 0 }
func (f *fakeResolver) FetchTotalMembers(ctx context.Context) {}
func (f *fakeResolver) BeginLogin(ctx context.Context, returnTo string) (string, error) {
	return "", nil
}
func (f *fakeResolver) CompleteLogin(ctx context.Context, code, state string) (domain.Resolution, error) {
	return domain.Resolution{}, nil
}
func (f *fakeResolver) EndSession(ctx context.Context) error                  { return nil }
func (f *fakeResolver) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) {}

// fakeDirectory implements domain.SessionDirectory for tests.
type fakeDirectory struct {
	resolvers map[string]*fakeResolver
	sessions  map[string]*domain.ExternalSession
	nextSID   string

	lookedUp  string
	persisted *domain.ExternalSession
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		resolvers: map[string]*fakeResolver{},
		sessions:  map[string]*domain.ExternalSession{},
		nextSID:   "3f1c7c8e-2b7a-4a51-9a55-1f2b8f1d0c11",
	}
}

func (f *fakeDirectory) Open(ctx context.Context) (string, domain.IdentityResolver) {
	r := &fakeResolver{}
	f.resolvers[f.nextSID] = r
	return f.nextSID, r
}

func (f *fakeDirectory) Lookup(ctx context.Context, sid string, persisted *domain.ExternalSession) (domain.IdentityResolver, bool) {
	f.lookedUp = sid
	f.persisted = persisted
	r, ok := f.resolvers[sid]
	if !ok {
		return nil, false
	}
	return r, true
}

func (f *fakeDirectory) Session(ctx context.Context, sid string) (*domain.ExternalSession, error) {
	if _, ok := f.resolvers[sid]; !ok {
		return nil, domain.ErrInvalidSession
	}
	return f.sessions[sid], nil
}
