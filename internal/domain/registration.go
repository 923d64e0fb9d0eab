package domain

import (
	"context"
	"time"
)

// EventRegistration represents a user's registration for an event.
// UserID is the registrant's email.
// swagger:model EventRegistration
type EventRegistration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Status    Status    `json:"status"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventRegistrationRepository defines storage operations for event registrations.
type EventRegistrationRepository interface {
	List(ctx context.Context) ([]*EventRegistration, error)
	Create(ctx context.Context, reg *EventRegistration) error
	Update(ctx context.Context, id string, fields []Field) error
	Delete(ctx context.Context, id string) error
}
