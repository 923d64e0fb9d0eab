package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"blueelephant/internal/delivery/http/middleware"
	"blueelephant/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	ownerUser = &domain.User{Email: "admin@aariasblueelephant.org", Name: "Aaria", Role: domain.RoleBoardOwner}
	boardUser = &domain.User{Email: "maria@aariasblueelephant.org", Name: "Maria", Role: domain.RoleBoardMember}
	plainUser = &domain.User{Email: "sam@gmail.com", Name: "Sam", Role: domain.RoleUser, AvatarURL: "https://lh3.example/sam.png"}
)

// fakeResolver implements domain.IdentityResolver for handler tests.
type fakeResolver struct {
	user          *domain.User
	members       int64
	authURL       string
	beginErr      error
	resolution    domain.Resolution
	completeErr   error
	endErr        error
	lastReturnTo  string
	lastCode      string
	lastState     string
	ended         bool
	lastProfileUp *domain.ProfileUpdate
}

func (f *fakeResolver) CurrentUser() *domain.User             { return f.user }
func (f *fakeResolver) IsLoading() bool                       { return false }
func (f *fakeResolver) TotalMembers() int64                   { return f.members }
func (f *fakeResolver) FetchTotalMembers(ctx context.Context) {}

func (f *fakeResolver) BeginLogin(ctx context.Context, returnTo string) (string, error) {
	f.lastReturnTo = returnTo
	return f.authURL, f.beginErr
}

func (f *fakeResolver) CompleteLogin(ctx context.Context, code, state string) (domain.Resolution, error) {
	f.lastCode, f.lastState = code, state
	return f.resolution, f.completeErr
}

func (f *fakeResolver) EndSession(ctx context.Context) error {
	f.ended = true
	return f.endErr
}

func (f *fakeResolver) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) {
	f.lastProfileUp = &p
	if f.user != nil {
		f.user.Apply(p)
	}
}

// fakeSessions implements BrowserSessions.
type fakeSessions struct {
	resolver    *fakeResolver
	sid         string
	openErr     error
	persistErr  error
	persistedID string
}

func (f *fakeSessions) Open(w http.ResponseWriter, r *http.Request) (string, domain.IdentityResolver, error) {
	if f.openErr != nil {
		return "", nil, f.openErr
	}
	return f.sid, f.resolver, nil
}

func (f *fakeSessions) Persist(w http.ResponseWriter, r *http.Request, sid string) error {
	f.persistedID = sid
	return f.persistErr
}

// asUser attaches a browser session for u to req.
func asUser(req *http.Request, u *domain.User) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), "sid-1", &fakeResolver{user: u}))
}

type fakeMembers int64

func (f fakeMembers) Value() int64 { return int64(f) }

// fakeStore implements domain.DataStore for handler tests. Mutations record
// their arguments and return the configured result.
type fakeStore struct {
	events        []domain.Event
	testimonials  []domain.Testimonial
	volunteers    []domain.VolunteerApplication
	registrations []domain.EventRegistration

	result domain.Result

	lastNewEvent        *domain.NewEvent
	lastEventPatch      *domain.EventPatch
	lastNewTestimonial  *domain.NewTestimonial
	lastTestimonialPat  *domain.TestimonialPatch
	lastNewVolunteer    *domain.NewVolunteerApplication
	lastNewRegistration *domain.NewEventRegistration
	lastID              string
	calls               []string
}

func (f *fakeStore) record(op, id string) domain.Result {
	f.calls = append(f.calls, op)
	f.lastID = id
	return f.result
}

func (f *fakeStore) FetchAll(ctx context.Context) {}
func (f *fakeStore) IsLoading() bool              { return false }

func (f *fakeStore) Events() []domain.Event { return f.events }
func (f *fakeStore) Event(id string) (domain.Event, bool) {
	for _, e := range f.events {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Event{}, false
}
func (f *fakeStore) CreateEvent(ctx context.Context, in domain.NewEvent) domain.Result {
	f.lastNewEvent = &in
	return f.record("CreateEvent", "")
}
func (f *fakeStore) UpdateEvent(ctx context.Context, id string, p domain.EventPatch) domain.Result {
	f.lastEventPatch = &p
	return f.record("UpdateEvent", id)
}
func (f *fakeStore) DeleteEvent(ctx context.Context, id string) domain.Result {
	return f.record("DeleteEvent", id)
}

func (f *fakeStore) Testimonials() []domain.Testimonial { return f.testimonials }
func (f *fakeStore) ApprovedTestimonials() []domain.Testimonial {
	var out []domain.Testimonial
	for _, t := range f.testimonials {
		if t.Status == domain.StatusApproved {
			out = append(out, t)
		}
	}
	return out
}
func (f *fakeStore) AddTestimonial(ctx context.Context, in domain.NewTestimonial) domain.Result {
	f.lastNewTestimonial = &in
	return f.record("AddTestimonial", "")
}
func (f *fakeStore) UpdateTestimonial(ctx context.Context, id string, p domain.TestimonialPatch) domain.Result {
	f.lastTestimonialPat = &p
	return f.record("UpdateTestimonial", id)
}
func (f *fakeStore) ApproveTestimonial(ctx context.Context, id string) domain.Result {
	return f.record("ApproveTestimonial", id)
}
func (f *fakeStore) DeleteTestimonial(ctx context.Context, id string) domain.Result {
	return f.record("DeleteTestimonial", id)
}

func (f *fakeStore) VolunteerApplications() []domain.VolunteerApplication { return f.volunteers }
func (f *fakeStore) SubmitVolunteerApplication(ctx context.Context, in domain.NewVolunteerApplication) domain.Result {
	f.lastNewVolunteer = &in
	return f.record("SubmitVolunteerApplication", "")
}
func (f *fakeStore) ApproveVolunteerApplication(ctx context.Context, id string) domain.Result {
	return f.record("ApproveVolunteerApplication", id)
}

func (f *fakeStore) EventRegistrations() []domain.EventRegistration { return f.registrations }
func (f *fakeStore) EventRegistration(id string) (domain.EventRegistration, bool) {
	for _, r := range f.registrations {
		if r.ID == id {
			return r, true
		}
	}
	return domain.EventRegistration{}, false
}
func (f *fakeStore) RegistrationsForUser(userID string) []domain.EventRegistration {
	var out []domain.EventRegistration
	for _, r := range f.registrations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}
func (f *fakeStore) RegisterForEvent(ctx context.Context, in domain.NewEventRegistration) domain.Result {
	f.lastNewRegistration = &in
	return f.record("RegisterForEvent", in.EventID)
}
func (f *fakeStore) ApproveRegistration(ctx context.Context, id string) domain.Result {
	return f.record("ApproveRegistration", id)
}
func (f *fakeStore) DeleteRegistration(ctx context.Context, id string) domain.Result {
	return f.record("DeleteRegistration", id)
}

var _ domain.DataStore = (*fakeStore)(nil)
