package services

import (
	"context"
	"slices"

	"blueelephant/internal/domain"
)

func (s *Store) Testimonials() []domain.Testimonial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.testimonialList)
}

// ApprovedTestimonials returns the publicly visible testimonials in mirror order.
func (s *Store) ApprovedTestimonials() []domain.Testimonial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Testimonial, 0, len(s.testimonialList))
	for _, t := range s.testimonialList {
		if t.Status == domain.StatusApproved {
			out = append(out, t)
		}
	}
	return out
}

// AddTestimonial stores a new Pending testimonial dated today and prepends it.
func (s *Store) AddTestimonial(ctx context.Context, in domain.NewTestimonial) domain.Result {
	t := &domain.Testimonial{
		Author:      in.Author,
		AuthorEmail: in.AuthorEmail,
		Role:        in.Role,
		Title:       in.Title,
		Content:     s.sanitize(in.Content),
		Date:        s.today(),
		Avatar:      in.Avatar,
		Status:      domain.StatusPending,
		Rank:        in.Rank,
	}
	if err := s.testimonials.Create(ctx, t); err != nil {
		return s.fail("testimonial", "create", err)
	}

	s.mu.Lock()
	s.testimonialList = prepend(s.testimonialList, *t)
	s.mu.Unlock()

	s.notifier.submitted(ctx, domain.SubmissionEmailData{
		Kind:    "testimonial",
		From:    t.Author,
		Email:   t.AuthorEmail,
		Summary: t.Content,
	})
	return s.ok("testimonial", "create")
}

func (s *Store) UpdateTestimonial(ctx context.Context, id string, patch domain.TestimonialPatch) domain.Result {
	if patch.Content != nil {
		clean := s.sanitize(*patch.Content)
		patch.Content = &clean
	}
	if err := s.testimonials.Update(ctx, id, patch.Fields()); err != nil {
		return s.fail("testimonial", "update", err)
	}

	s.mu.Lock()
	for i := range s.testimonialList {
		if s.testimonialList[i].ID == id {
			s.testimonialList[i].Apply(patch)
		}
	}
	s.mu.Unlock()
	return s.ok("testimonial", "update")
}

// ApproveTestimonial sets status to Approved and leaves every other field alone.
func (s *Store) ApproveTestimonial(ctx context.Context, id string) domain.Result {
	if err := s.testimonials.Update(ctx, id, domain.ApproveFields()); err != nil {
		return s.fail("testimonial", "approve", err)
	}

	var approved *domain.Testimonial
	s.mu.Lock()
	for i := range s.testimonialList {
		if s.testimonialList[i].ID == id {
			s.testimonialList[i].Status = domain.StatusApproved
			t := s.testimonialList[i]
			approved = &t
		}
	}
	s.mu.Unlock()

	if approved != nil {
		s.notifier.approved(ctx, domain.ApprovalEmailData{
			To:      approved.AuthorEmail,
			Name:    approved.Author,
			Kind:    "testimonial",
			Summary: approved.Content,
		})
	}
	return s.ok("testimonial", "approve")
}

// DeleteTestimonial removes a testimonial in any status.
func (s *Store) DeleteTestimonial(ctx context.Context, id string) domain.Result {
	if err := s.testimonials.Delete(ctx, id); err != nil {
		return s.fail("testimonial", "delete", err)
	}

	s.mu.Lock()
	s.testimonialList = slices.DeleteFunc(s.testimonialList, func(t domain.Testimonial) bool { return t.ID == id })
	s.mu.Unlock()
	return s.ok("testimonial", "delete")
}
