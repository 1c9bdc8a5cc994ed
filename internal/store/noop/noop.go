// Package noop implementa el Store no-op para modo demo (sin DB).
// Todos los repos retornan ErrNoDatabase; el servicio lo mapea a 503.
package noop

import (
	"context"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
	"github.com/dropDatabas3/ajustes/internal/store"
)

func init() {
	store.Register("none", open)
	store.Register("noop", open)
}

type noopStore struct{}

func open(ctx context.Context, cfg store.Config) (store.Store, error) {
	return &noopStore{}, nil
}

func (s *noopStore) Name() string                   { return "none" }
func (s *noopStore) Ping(ctx context.Context) error { return nil }
func (s *noopStore) Close() error                   { return nil }

func (s *noopStore) Settings() repository.SettingsRepository { return &settingsRepo{} }
func (s *noopStore) Identities() repository.IdentityRepository {
	return &identityRepo{}
}
func (s *noopStore) VerificationTokens() repository.VerificationTokenRepository {
	return &tokenRepo{}
}

type settingsRepo struct{}

func (r *settingsRepo) Get(ctx context.Context, uid string) (*repository.SettingsDocument, error) {
	return nil, repository.ErrNoDatabase
}
func (r *settingsRepo) Put(ctx context.Context, doc *repository.SettingsDocument) error {
	return repository.ErrNoDatabase
}

type identityRepo struct{}

func (r *identityRepo) GetByUID(ctx context.Context, uid string) (*repository.IdentityRecord, error) {
	return nil, repository.ErrNoDatabase
}
func (r *identityRepo) UpdateEmail(ctx context.Context, uid, email string, verified bool) error {
	return repository.ErrNoDatabase
}
func (r *identityRepo) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	return repository.ErrNoDatabase
}

type tokenRepo struct{}

func (r *tokenRepo) Create(ctx context.Context, input repository.CreateVerificationTokenInput) (*repository.VerificationToken, error) {
	return nil, repository.ErrNoDatabase
}
func (r *tokenRepo) Use(ctx context.Context, tokenHash string) (*repository.VerificationToken, error) {
	return nil, repository.ErrNoDatabase
}
func (r *tokenRepo) DeleteExpired(ctx context.Context) (int, error) {
	return 0, repository.ErrNoDatabase
}
