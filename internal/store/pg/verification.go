package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

type verificationTokenRepo struct {
	pool *pgxpool.Pool
}

func (r *verificationTokenRepo) Create(ctx context.Context, input repository.CreateVerificationTokenInput) (*repository.VerificationToken, error) {
	// Invalidar tokens previos del mismo principal
	_, err := r.pool.Exec(ctx,
		`UPDATE verification_token SET used_at = NOW() WHERE uid = $1 AND used_at IS NULL`,
		input.UID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	token := &repository.VerificationToken{
		ID:        uuid.NewString(),
		UID:       input.UID,
		Email:     input.Email,
		TokenHash: input.TokenHash,
		ExpiresAt: now.Add(input.TTL),
		CreatedAt: now,
	}

	const q = `
		INSERT INTO verification_token (id, uid, email, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, q,
		token.ID, token.UID, token.Email, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *verificationTokenRepo) Use(ctx context.Context, tokenHash string) (*repository.VerificationToken, error) {
	const q = `
		UPDATE verification_token SET used_at = NOW()
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > NOW()
		RETURNING id, uid, email, expires_at, used_at, created_at
	`
	var token repository.VerificationToken
	token.TokenHash = tokenHash
	err := r.pool.QueryRow(ctx, q, tokenHash).Scan(
		&token.ID, &token.UID, &token.Email, &token.ExpiresAt, &token.UsedAt, &token.CreatedAt,
	)
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Distinguir inexistente de expirado/usado
	var usedAt *time.Time
	var expiresAt time.Time
	err = r.pool.QueryRow(ctx,
		`SELECT used_at, expires_at FROM verification_token WHERE token_hash = $1`,
		tokenHash).Scan(&usedAt, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if usedAt != nil {
		return nil, repository.ErrTokenUsed
	}
	return nil, repository.ErrTokenExpired
}

func (r *verificationTokenRepo) DeleteExpired(ctx context.Context) (int, error) {
	const q = `DELETE FROM verification_token WHERE expires_at < NOW() OR used_at IS NOT NULL`
	tag, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
