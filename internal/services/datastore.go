package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"blueelephant/internal/domain"
)

const dateLayout = "2006-01-02"

// Store owns the four site collections. Every mutation writes to the
// repository first and applies the same change to the in-memory mirror only
// after the write is acknowledged. Concurrent mutations are last-write-wins
// on the mirror.
type Store struct {
	events        domain.EventRepository
	testimonials  domain.TestimonialRepository
	volunteers    domain.VolunteerApplicationRepository
	registrations domain.EventRegistrationRepository
	notifier      *notifier
	policy        *bluemonday.Policy
	logger        *slog.Logger
	now           func() time.Time

	mu               sync.RWMutex
	loading          bool
	eventList        []domain.Event
	testimonialList  []domain.Testimonial
	volunteerList    []domain.VolunteerApplication
	registrationList []domain.EventRegistration
}

var _ domain.DataStore = (*Store)(nil)

// NewStore returns an empty Store. emails may be nil to disable notifications.
func NewStore(
	events domain.EventRepository,
	testimonials domain.TestimonialRepository,
	volunteers domain.VolunteerApplicationRepository,
	registrations domain.EventRegistrationRepository,
	emails domain.EmailService,
	notifyTo string,
	logger *slog.Logger,
) *Store {
	return &Store{
		events:        events,
		testimonials:  testimonials,
		volunteers:    volunteers,
		registrations: registrations,
		notifier:      newNotifier(emails, notifyTo, logger),
		policy:        bluemonday.UGCPolicy(),
		logger:        logger,
		now:           time.Now,
		loading:       true,
	}
}

// FetchAll loads all four collections in parallel. A collection whose query
// fails keeps its previous contents; the others are still replaced.
func (s *Store) FetchAll(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	var g errgroup.Group
	g.Go(func() error {
		return s.load(ctx, "event", func(ctx context.Context) error {
			list, err := s.events.List(ctx)
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.eventList = values(list)
			s.mu.Unlock()
			return nil
		})
	})
	g.Go(func() error {
		return s.load(ctx, "testimonial", func(ctx context.Context) error {
			list, err := s.testimonials.List(ctx)
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.testimonialList = values(list)
			s.mu.Unlock()
			return nil
		})
	})
	g.Go(func() error {
		return s.load(ctx, "volunteer_application", func(ctx context.Context) error {
			list, err := s.volunteers.List(ctx)
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.volunteerList = values(list)
			s.mu.Unlock()
			return nil
		})
	})
	g.Go(func() error {
		return s.load(ctx, "event_registration", func(ctx context.Context) error {
			list, err := s.registrations.List(ctx)
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.registrationList = values(list)
			s.mu.Unlock()
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("data store loaded partially", "error", err)
	}
}

func (s *Store) load(ctx context.Context, entity string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		storeLoadFailures.WithLabelValues(entity).Inc()
		s.logger.Error("load collection", "entity", entity, "error", err)
		return fmt.Errorf("load %s: %w", entity, err)
	}
	return nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) sanitize(html string) string {
	return s.policy.Sanitize(html)
}

func (s *Store) today() string {
	return s.now().Format(dateLayout)
}

func (s *Store) ok(entity, op string) domain.Result {
	storeMutations.WithLabelValues(entity, op, "ok").Inc()
	return domain.OK()
}

func (s *Store) fail(entity, op string, err error) domain.Result {
	storeMutations.WithLabelValues(entity, op, "error").Inc()
	var be *domain.BackendError
	if errors.As(err, &be) {
		s.logger.Warn("mutation rejected", "entity", entity, "op", op, "code", be.Code, "error", err)
	} else {
		s.logger.Error("mutation failed", "entity", entity, "op", op, "error", err)
	}
	return domain.Fail(err)
}

// failLocal reports a precondition failure detected before any remote call.
func (s *Store) failLocal(entity, op string, kind domain.FailureKind, msg string) domain.Result {
	storeMutations.WithLabelValues(entity, op, "rejected").Inc()
	return domain.Failed(kind, msg)
}

func values[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, *it)
		}
	}
	return out
}

func prepend[T any](items []T, item T) []T {
	return slices.Insert(items, 0, item)
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
