package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"blueelephant/internal/domain"
)

type testimonialRepository struct {
	DB *sql.DB
}

func NewTestimonialRepository(db *sql.DB) domain.TestimonialRepository {
	return &testimonialRepository{DB: db}
}

func scanTestimonial(row rowScanner) (*domain.Testimonial, error) {
	t := &domain.Testimonial{}
	var (
		email, title, avatar sql.NullString
		status               string
		rank                 sql.NullInt64
		date                 sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Author, &email, &t.Role, &title, &t.Content,
		&date, &avatar, &status, &rank, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.AuthorEmail = email.String
	t.Title = title.String
	t.Avatar = avatar.String
	t.Status = domain.Status(status)
	if date.Valid {
		t.Date = date.Time.Format(dateLayout)
	}
	if rank.Valid {
		v := int(rank.Int64)
		t.Rank = &v
	}
	return t, nil
}

func (r *testimonialRepository) List(ctx context.Context) ([]*domain.Testimonial, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM testimonials
		ORDER BY rank ASC NULLS LAST, created_at DESC
	`, testimonialsTable.selectList())
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	out := make([]*domain.Testimonial, 0)
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, translateError(rows.Err())
}

func (r *testimonialRepository) Create(ctx context.Context, t *domain.Testimonial) error {
	query := fmt.Sprintf(`
		INSERT INTO testimonials (author, author_email, role, title, content, date, avatar, status, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, testimonialsTable.selectList())
	var rank sql.NullInt64
	if t.Rank != nil {
		rank = sql.NullInt64{Int64: int64(*t.Rank), Valid: true}
	}
	row := r.DB.QueryRowContext(ctx, query,
		t.Author, t.AuthorEmail, t.Role, t.Title, t.Content, t.Date, t.Avatar, string(t.Status), rank,
	)
	stored, err := scanTestimonial(row)
	if err != nil {
		return translateError(err)
	}
	*t = *stored
	return nil
}

func (r *testimonialRepository) Update(ctx context.Context, id string, fields []domain.Field) error {
	query, args, err := testimonialsTable.updateQuery(id, fields)
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, r.DB, query, args...)
}

func (r *testimonialRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.DB, `DELETE FROM testimonials WHERE id = $1`, id)
}
