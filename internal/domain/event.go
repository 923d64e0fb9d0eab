package domain

import (
	"context"
	"time"
)

// EventType classifies an event listing.
type EventType string

const (
	EventTypeClass      EventType = "Class"
	EventTypeEvent      EventType = "Event"
	EventTypeFundraiser EventType = "Fundraiser"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeClass, EventTypeEvent, EventTypeFundraiser:
		return true
	}
	return false
}

// Event is a class, gathering or fundraiser listed on the site.
// Registered only moves through registration create/delete and never drops below 0.
// swagger:model Event
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Type         EventType `json:"type"`
	Capacity     int       `json:"capacity"`
	Registered   int       `json:"registered"`
	Image        string    `json:"image"`
	InitialLikes int       `json:"initialLikes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SpotsLeft returns the remaining advisory capacity, never negative.
func (e *Event) SpotsLeft() int {
	if e.Registered >= e.Capacity {
		return 0
	}
	return e.Capacity - e.Registered
}

// EventPatch is a partial Event update. Nil fields are left unchanged.
type EventPatch struct {
	Title        *string    `json:"title"`
	Date         *string    `json:"date"`
	Time         *string    `json:"time"`
	Location     *string    `json:"location"`
	Description  *string    `json:"description"`
	Type         *EventType `json:"type"`
	Capacity     *int       `json:"capacity"`
	Image        *string    `json:"image"`
	InitialLikes *int       `json:"initialLikes"`
}

// Fields lists the set attributes of p in a stable order.
func (p EventPatch) Fields() []Field {
	var fs []Field
	if p.Title != nil {
		fs = append(fs, Field{"title", *p.Title})
	}
	if p.Date != nil {
		fs = append(fs, Field{"date", *p.Date})
	}
	if p.Time != nil {
		fs = append(fs, Field{"time", *p.Time})
	}
	if p.Location != nil {
		fs = append(fs, Field{"location", *p.Location})
	}
	if p.Description != nil {
		fs = append(fs, Field{"description", *p.Description})
	}
	if p.Type != nil {
		fs = append(fs, Field{"type", string(*p.Type)})
	}
	if p.Capacity != nil {
		fs = append(fs, Field{"capacity", *p.Capacity})
	}
	if p.Image != nil {
		fs = append(fs, Field{"image", *p.Image})
	}
	if p.InitialLikes != nil {
		fs = append(fs, Field{"initialLikes", *p.InitialLikes})
	}
	return fs
}

// Apply merges the non-nil fields of p into e.
func (e *Event) Apply(p EventPatch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.InitialLikes != nil {
		e.InitialLikes = *p.InitialLikes
	}
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// List returns all events ordered by date ascending.
	List(ctx context.Context) ([]*Event, error)
	// Create inserts e and overwrites it with the stored row.
	Create(ctx context.Context, e *Event) error
	Update(ctx context.Context, id string, fields []Field) error
	Delete(ctx context.Context, id string) error
	// AdjustRegistered atomically adds delta to registered, flooring at 0,
	// and returns the stored value.
	AdjustRegistered(ctx context.Context, id string, delta int) (int, error)
}
