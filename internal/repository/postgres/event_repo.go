package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blueelephant/internal/domain"
)

const dateLayout = "2006-01-02"

type rowScanner interface {
	Scan(dest ...any) error
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		date    time.Time
		typ     string
		descr   sql.NullString
		image   sql.NullString
		evtTime sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.Title, &date, &evtTime, &e.Location, &descr, &typ,
		&e.Capacity, &e.Registered, &image, &e.InitialLikes, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Date = date.Format(dateLayout)
	e.Time = evtTime.String
	e.Description = descr.String
	e.Type = domain.EventType(typ)
	e.Image = image.String
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		ORDER BY date ASC
	`, eventsTable.selectList())
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, translateError(rows.Err())
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := fmt.Sprintf(`
		INSERT INTO events (title, date, time, location, description, type, capacity, registered, image, initial_likes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s
	`, eventsTable.selectList())
	row := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Date, e.Time, e.Location, e.Description, string(e.Type),
		e.Capacity, e.Registered, e.Image, e.InitialLikes,
	)
	stored, err := scanEvent(row)
	if err != nil {
		return translateError(err)
	}
	*e = *stored
	return nil
}

func (r *eventRepository) Update(ctx context.Context, id string, fields []domain.Field) error {
	query, args, err := eventsTable.updateQuery(id, fields)
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, r.DB, query, args...)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.DB, `DELETE FROM events WHERE id = $1`, id)
}

func (r *eventRepository) AdjustRegistered(ctx context.Context, id string, delta int) (int, error) {
	query := `
		UPDATE events SET registered = GREATEST(registered + $1, 0)
		WHERE id = $2
		RETURNING registered
	`
	var registered int
	err := r.DB.QueryRowContext(ctx, query, delta, id).Scan(&registered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, translateError(err)
	}
	return registered, nil
}

// execAffectingOne runs a statement that must touch a row; zero rows is ErrNotFound.
func execAffectingOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
