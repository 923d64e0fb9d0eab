package services

import (
	"context"
	"slices"

	"blueelephant/internal/domain"
)

func (s *Store) VolunteerApplications() []domain.VolunteerApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.volunteerList)
}

func (s *Store) SubmitVolunteerApplication(ctx context.Context, in domain.NewVolunteerApplication) domain.Result {
	a := &domain.VolunteerApplication{
		Name:     in.Name,
		Email:    in.Email,
		Interest: in.Interest,
		Status:   domain.StatusPending,
	}
	if err := s.volunteers.Create(ctx, a); err != nil {
		return s.fail("volunteer_application", "create", err)
	}

	s.mu.Lock()
	s.volunteerList = prepend(s.volunteerList, *a)
	s.mu.Unlock()

	s.notifier.submitted(ctx, domain.SubmissionEmailData{
		Kind:    "volunteer application",
		From:    a.Name,
		Email:   a.Email,
		Summary: a.Interest,
	})
	return s.ok("volunteer_application", "create")
}

func (s *Store) ApproveVolunteerApplication(ctx context.Context, id string) domain.Result {
	if err := s.volunteers.Update(ctx, id, domain.ApproveFields()); err != nil {
		return s.fail("volunteer_application", "approve", err)
	}

	var approved *domain.VolunteerApplication
	s.mu.Lock()
	for i := range s.volunteerList {
		if s.volunteerList[i].ID == id {
			s.volunteerList[i].Status = domain.StatusApproved
			a := s.volunteerList[i]
			approved = &a
		}
	}
	s.mu.Unlock()

	if approved != nil {
		s.notifier.approved(ctx, domain.ApprovalEmailData{
			To:      approved.Email,
			Name:    approved.Name,
			Kind:    "volunteer application",
			Summary: approved.Interest,
		})
	}
	return s.ok("volunteer_application", "approve")
}
