package services

import (
	"context"
	"slices"
	"strings"

	"blueelephant/internal/domain"
)

func (s *Store) EventRegistrations() []domain.EventRegistration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.registrationList)
}

func (s *Store) EventRegistration(id string) (domain.EventRegistration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.registrationList, func(r domain.EventRegistration) bool { return r.ID == id })
	if i < 0 {
		return domain.EventRegistration{}, false
	}
	return s.registrationList[i], true
}

// RegistrationsForUser returns the registrations whose userId matches, ignoring case.
func (s *Store) RegistrationsForUser(userID string) []domain.EventRegistration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.EventRegistration, 0)
	for _, r := range s.registrationList {
		if strings.EqualFold(r.UserID, userID) {
			out = append(out, r)
		}
	}
	return out
}

// RegisterForEvent stores a Pending registration and then increments the
// event's registered count. A counter failure is logged and the
// registration still succeeds.
func (s *Store) RegisterForEvent(ctx context.Context, in domain.NewEventRegistration) domain.Result {
	if s.isRegistered(in.EventID, in.UserID) {
		return s.failLocal("event_registration", "create", domain.FailureConflict, "already registered")
	}

	reg := &domain.EventRegistration{
		EventID:   in.EventID,
		UserID:    in.UserID,
		UserName:  in.UserName,
		UserEmail: in.UserEmail,
		Status:    domain.StatusPending,
		Date:      s.today(),
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		return s.fail("event_registration", "create", err)
	}

	s.mu.Lock()
	s.registrationList = prepend(s.registrationList, *reg)
	s.mu.Unlock()

	s.adjustRegistered(ctx, reg.EventID, 1)

	summary := reg.EventID
	if e, ok := s.Event(reg.EventID); ok {
		summary = e.Title + " on " + e.Date
	}
	s.notifier.submitted(ctx, domain.SubmissionEmailData{
		Kind:    "event registration",
		From:    reg.UserName,
		Email:   reg.UserEmail,
		Summary: summary,
	})
	return s.ok("event_registration", "create")
}

func (s *Store) isRegistered(eventID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.registrationList, func(r domain.EventRegistration) bool {
		return r.EventID == eventID && strings.EqualFold(r.UserID, userID)
	})
}

func (s *Store) ApproveRegistration(ctx context.Context, id string) domain.Result {
	if err := s.registrations.Update(ctx, id, domain.ApproveFields()); err != nil {
		return s.fail("event_registration", "approve", err)
	}

	var approved *domain.EventRegistration
	s.mu.Lock()
	for i := range s.registrationList {
		if s.registrationList[i].ID == id {
			s.registrationList[i].Status = domain.StatusApproved
			r := s.registrationList[i]
			approved = &r
		}
	}
	s.mu.Unlock()

	if approved != nil {
		summary := approved.EventID
		if e, ok := s.Event(approved.EventID); ok {
			summary = e.Title + " on " + e.Date
		}
		s.notifier.approved(ctx, domain.ApprovalEmailData{
			To:      approved.UserEmail,
			Name:    approved.UserName,
			Kind:    "event registration",
			Summary: summary,
		})
	}
	return s.ok("event_registration", "approve")
}

// DeleteRegistration removes a registration known to the mirror and then
// decrements its event's registered count, floored at 0.
func (s *Store) DeleteRegistration(ctx context.Context, id string) domain.Result {
	reg, ok := s.EventRegistration(id)
	if !ok {
		return s.failLocal("event_registration", "delete", domain.FailureNotFound, "registration not found")
	}
	if err := s.registrations.Delete(ctx, id); err != nil {
		return s.fail("event_registration", "delete", err)
	}

	s.mu.Lock()
	s.registrationList = slices.DeleteFunc(s.registrationList, func(r domain.EventRegistration) bool { return r.ID == id })
	s.mu.Unlock()

	s.adjustRegistered(ctx, reg.EventID, -1)
	return s.ok("event_registration", "delete")
}
