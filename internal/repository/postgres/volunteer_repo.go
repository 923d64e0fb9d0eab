package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"blueelephant/internal/domain"
)

type volunteerApplicationRepository struct {
	DB *sql.DB
}

func NewVolunteerApplicationRepository(db *sql.DB) domain.VolunteerApplicationRepository {
	return &volunteerApplicationRepository{DB: db}
}

func scanVolunteerApplication(row rowScanner) (*domain.VolunteerApplication, error) {
	a := &domain.VolunteerApplication{}
	var status string
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Interest, &status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Status = domain.Status(status)
	return a, nil
}

func (r *volunteerApplicationRepository) List(ctx context.Context) ([]*domain.VolunteerApplication, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM volunteer_applications
		ORDER BY created_at DESC
	`, volunteerApplicationsTable.selectList())
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	apps := make([]*domain.VolunteerApplication, 0)
	for rows.Next() {
		a, err := scanVolunteerApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, translateError(rows.Err())
}

func (r *volunteerApplicationRepository) Create(ctx context.Context, a *domain.VolunteerApplication) error {
	query := fmt.Sprintf(`
		INSERT INTO volunteer_applications (name, email, interest, status)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, volunteerApplicationsTable.selectList())
	stored, err := scanVolunteerApplication(r.DB.QueryRowContext(ctx, query, a.Name, a.Email, a.Interest, string(a.Status)))
	if err != nil {
		return translateError(err)
	}
	*a = *stored
	return nil
}

func (r *volunteerApplicationRepository) Update(ctx context.Context, id string, fields []domain.Field) error {
	query, args, err := volunteerApplicationsTable.updateQuery(id, fields)
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, r.DB, query, args...)
}
