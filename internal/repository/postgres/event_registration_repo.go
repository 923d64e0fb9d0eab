package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blueelephant/internal/domain"
)

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &eventRegistrationRepository{
		DB: db,
	}
}

func scanEventRegistration(row rowScanner) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{}
	var (
		status string
		date   time.Time
	)
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.UserName, &reg.UserEmail, &status, &date, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	reg.Status = domain.Status(status)
	reg.Date = date.Format(dateLayout)
	return reg, nil
}

func (r *eventRegistrationRepository) List(ctx context.Context) ([]*domain.EventRegistration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM event_registrations
		ORDER BY created_at DESC
	`, eventRegistrationsTable.selectList())
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	regs := make([]*domain.EventRegistration, 0)
	for rows.Next() {
		reg, err := scanEventRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, translateError(rows.Err())
}

func (r *eventRegistrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	query := fmt.Sprintf(`
		INSERT INTO event_registrations (event_id, user_id, user_name, user_email, status, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, eventRegistrationsTable.selectList())
	row := r.DB.QueryRowContext(ctx, query, reg.EventID, reg.UserID, reg.UserName, reg.UserEmail, string(reg.Status), reg.Date)
	stored, err := scanEventRegistration(row)
	if err != nil {
		return translateError(err)
	}
	*reg = *stored
	return nil
}

func (r *eventRegistrationRepository) Update(ctx context.Context, id string, fields []domain.Field) error {
	query, args, err := eventRegistrationsTable.updateQuery(id, fields)
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, r.DB, query, args...)
}

func (r *eventRegistrationRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.DB, `DELETE FROM event_registrations WHERE id = $1`, id)
}
