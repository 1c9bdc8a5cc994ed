package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

type identityRepo struct {
	pool *pgxpool.Pool
}

func (r *identityRepo) GetByUID(ctx context.Context, uid string) (*repository.IdentityRecord, error) {
	const q = `
		SELECT uid, email, email_verified, password_hash, created_at
		FROM admin_identity WHERE uid = $1
	`
	var rec repository.IdentityRecord
	err := r.pool.QueryRow(ctx, q, uid).Scan(
		&rec.UID, &rec.Email, &rec.EmailVerified, &rec.PasswordHash, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *identityRepo) UpdateEmail(ctx context.Context, uid, email string, verified bool) error {
	const q = `UPDATE admin_identity SET email = $2, email_verified = $3 WHERE uid = $1`
	tag, err := r.pool.Exec(ctx, q, uid, email, verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *identityRepo) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	const q = `UPDATE admin_identity SET email_verified = $2 WHERE uid = $1`
	tag, err := r.pool.Exec(ctx, q, uid, verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
