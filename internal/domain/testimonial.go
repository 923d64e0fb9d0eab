package domain

import (
	"context"
	"time"
)

// Testimonial is a quote submitted by a signed-in user. It is shown publicly
// once approved.
// swagger:model Testimonial
type Testimonial struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"authorEmail"`
	Role        string    `json:"role"`
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content"`
	Date        string    `json:"date"`
	Avatar      string    `json:"avatar,omitempty"`
	Status      Status    `json:"status"`
	Rank        *int      `json:"rank,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TestimonialPatch is a partial Testimonial update. Status is not patchable;
// use approval instead.
type TestimonialPatch struct {
	Author  *string `json:"author"`
	Role    *string `json:"role"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Avatar  *string `json:"avatar"`
	Rank    *int    `json:"rank"`
}

// Fields lists the set attributes of p in a stable order.
func (p TestimonialPatch) Fields() []Field {
	var fs []Field
	if p.Author != nil {
		fs = append(fs, Field{"author", *p.Author})
	}
	if p.Role != nil {
		fs = append(fs, Field{"role", *p.Role})
	}
	if p.Title != nil {
		fs = append(fs, Field{"title", *p.Title})
	}
	if p.Content != nil {
		fs = append(fs, Field{"content", *p.Content})
	}
	if p.Avatar != nil {
		fs = append(fs, Field{"avatar", *p.Avatar})
	}
	if p.Rank != nil {
		fs = append(fs, Field{"rank", *p.Rank})
	}
	return fs
}

// Apply merges the non-nil fields of p into t.
func (t *Testimonial) Apply(p TestimonialPatch) {
	if p.Author != nil {
		t.Author = *p.Author
	}
	if p.Role != nil {
		t.Role = *p.Role
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Avatar != nil {
		t.Avatar = *p.Avatar
	}
	if p.Rank != nil {
		rank := *p.Rank
		t.Rank = &rank
	}
}

// TestimonialRepository defines the interface for testimonial storage.
type TestimonialRepository interface {
	// List orders by rank ascending (unranked last), then newest first.
	List(ctx context.Context) ([]*Testimonial, error)
	Create(ctx context.Context, t *Testimonial) error
	Update(ctx context.Context, id string, fields []Field) error
	Delete(ctx context.Context, id string) error
}
