package repository

import (
	"context"
	"time"
)

// IdentityRecord es el registro de autenticación de un administrador:
// la vista mínima que este subsistema necesita del proveedor de identidad.
type IdentityRecord struct {
	UID           string
	Email         string
	EmailVerified bool
	PasswordHash  *string // PHC argon2id; nil si la cuenta no usa password
	CreatedAt     time.Time
}

// IdentityRepository define lectura/actualización del registro de identidad.
type IdentityRepository interface {
	// GetByUID retorna el registro del principal. ErrNotFound si no existe.
	GetByUID(ctx context.Context, uid string) (*IdentityRecord, error)

	// UpdateEmail cambia el email y el flag de verificación en una sola escritura.
	// Se usa tanto para el cambio como para el revert compensatorio.
	UpdateEmail(ctx context.Context, uid, email string, verified bool) error

	// SetEmailVerified actualiza solo el flag de verificación.
	SetEmailVerified(ctx context.Context, uid string, verified bool) error
}

// VerificationToken es un token temporal de verificación de email.
// Se guarda hasheado (sha256) y es de un solo uso.
type VerificationToken struct {
	ID        string
	UID       string
	Email     string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// CreateVerificationTokenInput contiene los datos para emitir un token.
type CreateVerificationTokenInput struct {
	UID       string
	Email     string
	TokenHash string
	TTL       time.Duration
}

// VerificationTokenRepository define operaciones sobre tokens de verificación.
type VerificationTokenRepository interface {
	// Create emite un token nuevo. Invalida cualquier token activo previo
	// del mismo principal.
	Create(ctx context.Context, input CreateVerificationTokenInput) (*VerificationToken, error)

	// Use marca el token como usado y lo retorna.
	// ErrNotFound si no existe, ErrTokenExpired si expiró, ErrTokenUsed si ya se usó.
	Use(ctx context.Context, tokenHash string) (*VerificationToken, error)

	// DeleteExpired elimina tokens expirados (job de limpieza).
	DeleteExpired(ctx context.Context) (int, error)
}
