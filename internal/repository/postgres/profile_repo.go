package postgres

import (
	"context"
	"database/sql"

	"blueelephant/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

// Upsert records a sign-in. A display name the member already chose is kept;
// the avatar follows the provider unless the provider sends none. p is
// overwritten with the stored row.
func (r *profileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (email, display_name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET display_name = COALESCE(NULLIF(profiles.display_name, ''), EXCLUDED.display_name),
		    avatar_url = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), profiles.avatar_url),
		    updated_at = EXCLUDED.updated_at
		RETURNING email, display_name, avatar_url, created_at, updated_at
	`
	var name, avatar sql.NullString
	err := r.DB.QueryRowContext(ctx, query, p.Email, p.DisplayName, p.AvatarURL, p.CreatedAt, p.UpdatedAt).
		Scan(&p.Email, &name, &avatar, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translateError(err)
	}
	p.DisplayName = name.String
	p.AvatarURL = avatar.String
	return nil
}

func (r *profileRepository) UpdateDisplayName(ctx context.Context, email, name string) error {
	query := `UPDATE profiles SET display_name = $1, updated_at = NOW() WHERE email = $2`
	return execAffectingOne(ctx, r.DB, query, name, email)
}

func (r *profileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, translateError(err)
	}
	return n, nil
}
