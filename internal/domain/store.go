package domain

import "context"

// NewEvent holds the client-supplied fields of an event. Registered and
// InitialLikes default to 0 when nil.
type NewEvent struct {
	Title        string
	Date         string
	Time         string
	Location     string
	Description  string
	Type         EventType
	Capacity     int
	Image        string
	Registered   *int
	InitialLikes *int
}

// NewTestimonial holds the client-supplied fields of a testimonial.
type NewTestimonial struct {
	Author      string
	AuthorEmail string
	Role        string
	Title       string
	Content     string
	Avatar      string
	Rank        *int
}

// NewVolunteerApplication holds the fields of a volunteer sign-up.
type NewVolunteerApplication struct {
	Name     string
	Email    string
	Interest string
}

// NewEventRegistration holds the fields of a registration request.
type NewEventRegistration struct {
	EventID   string
	UserID    string
	UserName  string
	UserEmail string
}

// DataStore owns the four site collections and keeps an in-memory mirror
// of them in step with every acknowledged remote mutation.
type DataStore interface {
	FetchAll(ctx context.Context)
	IsLoading() bool

	Events() []Event
	Event(id string) (Event, bool)
	CreateEvent(ctx context.Context, in NewEvent) Result
	UpdateEvent(ctx context.Context, id string, patch EventPatch) Result
	DeleteEvent(ctx context.Context, id string) Result

	Testimonials() []Testimonial
	ApprovedTestimonials() []Testimonial
	AddTestimonial(ctx context.Context, in NewTestimonial) Result
	UpdateTestimonial(ctx context.Context, id string, patch TestimonialPatch) Result
	ApproveTestimonial(ctx context.Context, id string) Result
	DeleteTestimonial(ctx context.Context, id string) Result

	VolunteerApplications() []VolunteerApplication
	SubmitVolunteerApplication(ctx context.Context, in NewVolunteerApplication) Result
	ApproveVolunteerApplication(ctx context.Context, id string) Result

	EventRegistrations() []EventRegistration
	EventRegistration(id string) (EventRegistration, bool)
	RegistrationsForUser(userID string) []EventRegistration
	RegisterForEvent(ctx context.Context, in NewEventRegistration) Result
	ApproveRegistration(ctx context.Context, id string) Result
	DeleteRegistration(ctx context.Context, id string) Result
}
