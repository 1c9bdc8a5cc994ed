// Package pg implementa el Store sobre PostgreSQL usando pgxpool.
package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
	"github.com/dropDatabas3/ajustes/internal/store"
	migrations "github.com/dropDatabas3/ajustes/migrations/postgres"
)

func init() {
	store.Register("postgres", open)
	store.Register("pg", open)
}

type pgStore struct {
	pool *pgxpool.Pool
	dsn  string
}

func open(ctx context.Context, cfg store.Config) (store.Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// Mapear MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}
	pcfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &pgStore{pool: pool, dsn: cfg.DSN}, nil
}

func (s *pgStore) Name() string { return "postgres" }

func (s *pgStore) Settings() repository.SettingsRepository {
	return &settingsRepo{pool: s.pool}
}

func (s *pgStore) Identities() repository.IdentityRepository {
	return &identityRepo{pool: s.pool}
}

func (s *pgStore) VerificationTokens() repository.VerificationTokenRepository {
	return &verificationTokenRepo{pool: s.pool}
}

func (s *pgStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Pool expone el pool subyacente (lo usa el collector de métricas).
func (s *pgStore) Pool() *pgxpool.Pool { return s.pool }

func (s *pgStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Migrate aplica las migraciones embebidas con goose. Usa una conexión
// database/sql aparte porque goose no opera sobre pgxpool.
func (s *pgStore) Migrate(ctx context.Context) error {
	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
