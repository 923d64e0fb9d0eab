package services

import (
	"context"
	"slices"

	"blueelephant/internal/domain"
)

func (s *Store) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.eventList)
}

func (s *Store) Event(id string) (domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.eventList, func(e domain.Event) bool { return e.ID == id })
	if i < 0 {
		return domain.Event{}, false
	}
	return s.eventList[i], true
}

// CreateEvent inserts an event and appends the stored row to the mirror.
// Registered and InitialLikes default to 0.
func (s *Store) CreateEvent(ctx context.Context, in domain.NewEvent) domain.Result {
	if !in.Type.Valid() {
		return s.failLocal("event", "create", domain.FailureInvalid, "invalid event type")
	}
	e := &domain.Event{
		Title:        in.Title,
		Date:         in.Date,
		Time:         in.Time,
		Location:     in.Location,
		Description:  s.sanitize(in.Description),
		Type:         in.Type,
		Capacity:     in.Capacity,
		Registered:   intOr(in.Registered, 0),
		Image:        in.Image,
		InitialLikes: intOr(in.InitialLikes, 0),
	}
	if err := s.events.Create(ctx, e); err != nil {
		return s.fail("event", "create", err)
	}

	s.mu.Lock()
	s.eventList = append(s.eventList, *e)
	s.mu.Unlock()
	return s.ok("event", "create")
}

func (s *Store) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) domain.Result {
	if patch.Type != nil && !patch.Type.Valid() {
		return s.failLocal("event", "update", domain.FailureInvalid, "invalid event type")
	}
	if patch.Description != nil {
		clean := s.sanitize(*patch.Description)
		patch.Description = &clean
	}
	if err := s.events.Update(ctx, id, patch.Fields()); err != nil {
		return s.fail("event", "update", err)
	}

	s.mu.Lock()
	for i := range s.eventList {
		if s.eventList[i].ID == id {
			s.eventList[i].Apply(patch)
		}
	}
	s.mu.Unlock()
	return s.ok("event", "update")
}

// DeleteEvent removes the event and, matching the foreign-key cascade, its
// registrations from the mirror.
func (s *Store) DeleteEvent(ctx context.Context, id string) domain.Result {
	if err := s.events.Delete(ctx, id); err != nil {
		return s.fail("event", "delete", err)
	}

	s.mu.Lock()
	s.eventList = slices.DeleteFunc(s.eventList, func(e domain.Event) bool { return e.ID == id })
	s.registrationList = slices.DeleteFunc(s.registrationList, func(r domain.EventRegistration) bool { return r.EventID == id })
	s.mu.Unlock()
	return s.ok("event", "delete")
}

// adjustRegistered moves an event's registered count by delta on the server
// and copies the stored value into the mirror. Failures are logged only.
func (s *Store) adjustRegistered(ctx context.Context, eventID string, delta int) {
	n, err := s.events.AdjustRegistered(ctx, eventID, delta)
	if err != nil {
		s.logger.Error("adjust registered count", "event_id", eventID, "delta", delta, "error", err)
		return
	}

	s.mu.Lock()
	for i := range s.eventList {
		if s.eventList[i].ID == eventID {
			s.eventList[i].Registered = n
		}
	}
	s.mu.Unlock()
}
