package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"blueelephant/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIdentityClient implements domain.IdentityClient for tests.
type fakeIdentityClient struct {
	mu          sync.Mutex
	session     *domain.ExternalSession
	sessionErr  error
	signInURL   string
	signInErr   error
	signOutErr  error
	completed   *domain.ExternalSession
	completeErr error
	listeners   []domain.AuthStateListener
	metadata    chan map[string]any
	metadataErr error
}

func newFakeIdentityClient() *fakeIdentityClient {
	return &fakeIdentityClient{
		signInURL: "https://accounts.example.com/auth",
		metadata:  make(chan map[string]any, 4),
	}
}

func (f *fakeIdentityClient) Session(ctx context.Context) (*domain.ExternalSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.sessionErr
}

func (f *fakeIdentityClient) SignInURL(ctx context.Context) (string, error) {
	if f.signInErr != nil {
		return "", f.signInErr
	}
	return f.signInURL, nil
}

func (f *fakeIdentityClient) CompleteSignIn(ctx context.Context, code, state string) (*domain.ExternalSession, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	f.mu.Lock()
	f.session = f.completed
	f.mu.Unlock()
	return f.completed, nil
}

// SignOut notifies listeners synchronously so tests can observe the result.
func (f *fakeIdentityClient) SignOut(ctx context.Context) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.mu.Lock()
	f.session = nil
	f.mu.Unlock()
	f.emit(domain.AuthEventSignedOut, nil)
	return nil
}

func (f *fakeIdentityClient) UpdateUserMetadata(ctx context.Context, data map[string]any) error {
	f.metadata <- data
	return f.metadataErr
}

func (f *fakeIdentityClient) OnAuthStateChange(l domain.AuthStateListener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
	i := len(f.listeners) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners[i] = nil
	}
}

func (f *fakeIdentityClient) emit(event domain.AuthEvent, s *domain.ExternalSession) {
	f.mu.Lock()
	listeners := slices.Clone(f.listeners)
	f.mu.Unlock()
	for _, l := range listeners {
		if l != nil {
			l(event, s)
		}
	}
}

func (f *fakeIdentityClient) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.listeners {
		if l != nil {
			n++
		}
	}
	return n
}

// fakeProfileRepo implements domain.ProfileRepository for tests.
type fakeProfileRepo struct {
	count    int64
	countErr error
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error { return nil }
func (f *fakeProfileRepo) UpdateDisplayName(ctx context.Context, email, name string) error {
	return nil
}
func (f *fakeProfileRepo) Count(ctx context.Context) (int64, error) {
	return f.count, f.countErr
}

// fakeEventRepo implements domain.EventRepository over a map.
type fakeEventRepo struct {
	mu        sync.Mutex
	rows      map[string]*domain.Event
	list      []*domain.Event
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	adjustErr error
	updates   [][]domain.Field
	nextID    int
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{rows: make(map[string]*domain.Event)}
	for _, e := range events {
		cp := *e
		f.rows[e.ID] = &cp
		f.list = append(f.list, e)
	}
	return f
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	return f.list, f.listErr
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = fmt.Sprintf("ev-new-%d", f.nextID)
	cp := *e
	f.rows[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, fields []domain.Field) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	return f.updateErr
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeEventRepo) AdjustRegistered(ctx context.Context, id string, delta int) (int, error) {
	if f.adjustErr != nil {
		return 0, f.adjustErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	e.Registered = max(e.Registered+delta, 0)
	return e.Registered, nil
}

// fakeTestimonialRepo implements domain.TestimonialRepository for tests.
type fakeTestimonialRepo struct {
	list      []*domain.Testimonial
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	updates   [][]domain.Field
	nextID    int
}

func (f *fakeTestimonialRepo) List(ctx context.Context) ([]*domain.Testimonial, error) {
	return f.list, f.listErr
}

func (f *fakeTestimonialRepo) Create(ctx context.Context, t *domain.Testimonial) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	t.ID = fmt.Sprintf("t-new-%d", f.nextID)
	return nil
}

func (f *fakeTestimonialRepo) Update(ctx context.Context, id string, fields []domain.Field) error {
	f.updates = append(f.updates, fields)
	return f.updateErr
}

func (f *fakeTestimonialRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

// fakeVolunteerRepo implements domain.VolunteerApplicationRepository for tests.
type fakeVolunteerRepo struct {
	list      []*domain.VolunteerApplication
	listErr   error
	createErr error
	updateErr error
	nextID    int
}

func (f *fakeVolunteerRepo) List(ctx context.Context) ([]*domain.VolunteerApplication, error) {
	return f.list, f.listErr
}

func (f *fakeVolunteerRepo) Create(ctx context.Context, a *domain.VolunteerApplication) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	a.ID = fmt.Sprintf("v-new-%d", f.nextID)
	return nil
}

func (f *fakeVolunteerRepo) Update(ctx context.Context, id string, fields []domain.Field) error {
	return f.updateErr
}

// fakeRegistrationRepo implements domain.EventRegistrationRepository for tests.
type fakeRegistrationRepo struct {
	list      []*domain.EventRegistration
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	creates   int
	deletes   int
	nextID    int
}

func (f *fakeRegistrationRepo) List(ctx context.Context) ([]*domain.EventRegistration, error) {
	return f.list, f.listErr
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, r *domain.EventRegistration) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	r.ID = fmt.Sprintf("r-new-%d", f.nextID)
	return nil
}

func (f *fakeRegistrationRepo) Update(ctx context.Context, id string, fields []domain.Field) error {
	return f.updateErr
}

func (f *fakeRegistrationRepo) Delete(ctx context.Context, id string) error {
	f.deletes++
	return f.deleteErr
}

// fakeEmailService records notices on buffered channels.
type fakeEmailService struct {
	submissions chan domain.SubmissionEmailData
	approvals   chan domain.ApprovalEmailData
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{
		submissions: make(chan domain.SubmissionEmailData, 8),
		approvals:   make(chan domain.ApprovalEmailData, 8),
	}
}

func (f *fakeEmailService) SendSubmissionNotice(ctx context.Context, data *domain.SubmissionEmailData) error {
	f.submissions <- *data
	return nil
}

func (f *fakeEmailService) SendApprovalNotice(ctx context.Context, data *domain.ApprovalEmailData) error {
	f.approvals <- *data
	return nil
}
