// Package store abre el backend de persistencia según configuración.
// Drivers soportados: postgres (pgx) y none (demo, sin DB).
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

// Store agrupa los repositorios del servicio sobre una misma conexión.
type Store interface {
	Name() string
	Settings() repository.SettingsRepository
	Identities() repository.IdentityRepository
	VerificationTokens() repository.VerificationTokenRepository
	Ping(ctx context.Context) error
	Close() error
}

// Migratable lo implementan los stores que soportan migraciones SQL.
type Migratable interface {
	Migrate(ctx context.Context) error
}

// Config parámetros de conexión para Open.
type Config struct {
	Driver       string // postgres | none
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// OpenFunc abre una conexión para un driver registrado.
type OpenFunc func(ctx context.Context, cfg Config) (Store, error)

var drivers = map[string]OpenFunc{}

// Register registra un driver. Se llama desde los init() de los adapters.
func Register(name string, fn OpenFunc) { drivers[name] = fn }

// Open crea el Store para el driver configurado.
func Open(ctx context.Context, cfg Config) (Store, error) {
	name := strings.ToLower(cfg.Driver)
	if name == "" {
		name = "none"
	}
	fn, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("store: driver no soportado: %q", cfg.Driver)
	}
	return fn(ctx, cfg)
}
