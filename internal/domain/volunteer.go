package domain

import (
	"context"
	"time"
)

// VolunteerApplication is a volunteer sign-up awaiting board approval.
// swagger:model VolunteerApplication
type VolunteerApplication struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Interest  string    `json:"interest"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// VolunteerApplicationRepository defines the interface for volunteer application storage.
type VolunteerApplicationRepository interface {
	List(ctx context.Context) ([]*VolunteerApplication, error)
	Create(ctx context.Context, a *VolunteerApplication) error
	Update(ctx context.Context, id string, fields []Field) error
}
