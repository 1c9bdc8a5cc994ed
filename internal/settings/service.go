// Package settings implementa el orquestador de mutaciones de settings:
// valida input, escribe en los backends en orden definido, deriva
// compensaciones y registra el rollback token de cada mutación.
package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
	"github.com/dropDatabas3/ajustes/internal/email"
	"github.com/dropDatabas3/ajustes/internal/jwt"
	"github.com/dropDatabas3/ajustes/internal/observability/logger"
	"github.com/dropDatabas3/ajustes/internal/rate"
	"github.com/dropDatabas3/ajustes/internal/rollback"
	"github.com/dropDatabas3/ajustes/internal/storage"
)

// Acciones con cooldown.
const (
	actionChangeEmail      = "change_email"
	actionSendVerification = "send_verification"
)

// Config parámetros de negocio del orquestador.
type Config struct {
	UndoWindow               time.Duration // validez del rollback token
	ChangeEmailCooldown      time.Duration
	SendVerificationCooldown time.Duration
	VerifyTTL                time.Duration // validez del link de verificación
	ReauthTTL                time.Duration // validez del token de reauth
}

func (c *Config) applyDefaults() {
	if c.UndoWindow <= 0 {
		c.UndoWindow = 5 * time.Minute
	}
	if c.ChangeEmailCooldown <= 0 {
		c.ChangeEmailCooldown = 60 * time.Second
	}
	if c.SendVerificationCooldown <= 0 {
		c.SendVerificationCooldown = 60 * time.Second
	}
	if c.VerifyTTL <= 0 {
		c.VerifyTTL = 48 * time.Hour
	}
	if c.ReauthTTL <= 0 {
		c.ReauthTTL = 5 * time.Minute
	}
}

// Deps dependencias del orquestador.
type Deps struct {
	Settings     repository.SettingsRepository
	Identity     repository.IdentityRepository
	VerifyTokens repository.VerificationTokenRepository
	Objects      storage.ObjectStorage
	Emails       *email.Service
	Cooldowns    rate.CooldownStore
	Rollbacks    rollback.Store
	Tokens       *jwt.Manager
	Config       Config
}

// Service es el coordinador del saga de mutaciones.
type Service struct {
	settings     repository.SettingsRepository
	identity     repository.IdentityRepository
	verifyTokens repository.VerificationTokenRepository
	objects      storage.ObjectStorage
	emails       *email.Service
	cooldowns    rate.CooldownStore
	rollbacks    rollback.Store
	comp         *rollback.Compensator
	tokens       *jwt.Manager
	cfg          Config
	now          func() time.Time
}

// NewService crea el orquestador.
func NewService(deps Deps) *Service {
	cfg := deps.Config
	cfg.applyDefaults()
	return &Service{
		settings:     deps.Settings,
		identity:     deps.Identity,
		verifyTokens: deps.VerifyTokens,
		objects:      deps.Objects,
		emails:       deps.Emails,
		cooldowns:    deps.Cooldowns,
		rollbacks:    deps.Rollbacks,
		comp:         rollback.NewCompensator(deps.Objects),
		tokens:       deps.Tokens,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Compensator expone el ejecutor de compensaciones para el sweeper.
func (s *Service) Compensator() *rollback.Compensator { return s.comp }

// ReauthTTL expone la validez del token de reauth (para la respuesta HTTP).
func (s *Service) ReauthTTL() time.Duration { return s.cfg.ReauthTTL }

// MutationResult es el resultado de toda mutación con ventana de deshacer.
type MutationResult struct {
	Settings      *repository.SettingsDocument
	RollbackToken string
	ExpiresAt     time.Time
}

// LoadSettings retorna el documento del principal, creándolo con defaults en
// la primera lectura.
func (s *Service) LoadSettings(ctx context.Context, uid string) (*repository.SettingsDocument, error) {
	doc, err := s.settings.Get(ctx, uid)
	if err == nil {
		return doc, nil
	}
	if errors.Is(err, repository.ErrNoDatabase) {
		return nil, accessErr(CodeBackendUnavailable, "backend de settings no configurado", err)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, accessErr(CodeStoreError, "no se pudo leer el documento", err)
	}

	// Primera lectura: crear con defaults. El email sale del registro de
	// identidad si está disponible.
	var identityEmail string
	if rec, ierr := s.identity.GetByUID(ctx, uid); ierr == nil {
		identityEmail = rec.Email
	}
	doc = defaultDocument(uid, identityEmail)
	if perr := s.settings.Put(ctx, doc); perr != nil {
		return nil, s.storeErr("no se pudo crear el documento inicial", perr)
	}
	return doc, nil
}

// persistOptions parámetros opcionales de persistUpdates.
type persistOptions struct {
	// current evita una relectura cuando el caller ya tiene el snapshot.
	current *repository.SettingsDocument

	// identity presente solo cuando la mutación tocó el proveedor de identidad.
	identity *rollback.IdentitySnapshot

	onRollback []rollback.Compensation
	onExpire   []rollback.Compensation
}

// persistUpdates es la primitiva compartida de toda mutación de sección:
// resuelve el snapshot actual, escribe el merge shallow y registra la
// entrada de rollback. Si la escritura falla no se emite token.
func (s *Service) persistUpdates(ctx context.Context, uid string, patch repository.DocumentPatch, opts persistOptions) (*MutationResult, error) {
	current := opts.current
	if current == nil {
		var err error
		if current, err = s.LoadSettings(ctx, uid); err != nil {
			return nil, err
		}
	}

	previous := cloneDocument(current)
	merged := mergeDocument(current, patch)
	merged.UpdatedAt = s.now().UTC()

	if err := s.settings.Put(ctx, merged); err != nil {
		return nil, s.storeErr("no se pudo escribir el documento", err)
	}

	entry := &rollback.Entry{
		Token:       uuid.NewString(),
		UID:         uid,
		PreviousDoc: previous,
		Identity:    opts.identity,
		OnRollback:  opts.onRollback,
		OnExpire:    opts.onExpire,
		CreatedAt:   s.now(),
		ExpiresAt:   s.now().Add(s.cfg.UndoWindow),
	}
	if err := s.rollbacks.Put(ctx, entry); err != nil {
		// La mutación ya está aplicada: reportarla sin ventana de deshacer
		// es preferible a mentir con un error.
		logger.From(ctx).Error("rollback entry registration failed",
			logger.Component("settings.Service"),
			logger.UID(uid),
			logger.Err(err),
		)
		return &MutationResult{Settings: merged}, nil
	}

	return &MutationResult{
		Settings:      merged,
		RollbackToken: entry.Token,
		ExpiresAt:     entry.ExpiresAt,
	}, nil
}

// Rollback deshace la mutación asociada al token: restaura el documento, el
// registro de identidad si corresponde, y ejecuta las compensaciones.
func (s *Service) Rollback(ctx context.Context, token string) (*repository.SettingsDocument, error) {
	log := logger.From(ctx).With(
		logger.Component("settings.Service"),
		logger.Op("Rollback"),
	)

	e, err := s.rollbacks.Get(ctx, token)
	if err != nil {
		return nil, accessErr(CodeRollbackInvalid, "token inexistente o ya consumido", err)
	}

	// Chequeo lazy de expiración: un token vencido se comporta igual que uno
	// ya barrido, corra o no el sweep antes que nosotros.
	if e.Expired(s.now()) {
		if consumed, cerr := s.rollbacks.Consume(ctx, token); cerr == nil {
			// Ganamos la carrera contra el sweep: las compensaciones de
			// expiración son nuestras.
			if len(consumed.OnExpire) > 0 {
				_ = s.comp.Run(ctx, consumed.OnExpire)
			}
		}
		return nil, accessErr(CodeRollbackInvalid, "la ventana de deshacer venció", nil)
	}

	// Restaurar el documento antes de consumir: si falla, el token queda
	// intacto y el caller puede reintentar hasta que venza.
	if err := s.settings.Put(ctx, e.PreviousDoc); err != nil {
		return nil, s.storeErr("no se pudo restaurar el documento", err)
	}

	// Consume resuelve la carrera: de acá en adelante los efectos son
	// irreversibles y exactamente un caller los ejecuta.
	consumed, err := s.rollbacks.Consume(ctx, token)
	if err != nil {
		return nil, accessErr(CodeRollbackInvalid, "token consumido por otra operación", err)
	}

	if consumed.Identity != nil {
		if ierr := s.identity.UpdateEmail(ctx, consumed.UID, consumed.Identity.Email, consumed.Identity.Verified); ierr != nil {
			// Best-effort: el documento ya fue restaurado y el token
			// consumido; no hay camino de retry.
			log.Warn("identity restore failed",
				logger.UID(consumed.UID),
				logger.Err(ierr),
			)
		}
	}

	if len(consumed.OnRollback) > 0 {
		_ = s.comp.Run(ctx, consumed.OnRollback)
	}

	log.Info("mutation rolled back", logger.UID(consumed.UID))
	return consumed.PreviousDoc, nil
}

// storeErr mapea errores del repositorio de settings al código de contrato.
func (s *Service) storeErr(msg string, err error) *AccessError {
	if errors.Is(err, repository.ErrNoDatabase) {
		return accessErr(CodeBackendUnavailable, msg, err)
	}
	return accessErr(CodeStoreError, msg, err)
}

// checkCooldown consulta la ventana de una acción y retorna CooldownError si
// sigue activa. Un fallo del store de cooldowns no bloquea la operación.
func (s *Service) checkCooldown(ctx context.Context, action, uid string) error {
	remaining, err := s.cooldowns.OnCooldown(ctx, action, uid)
	if err != nil {
		logger.From(ctx).Warn("cooldown check failed",
			logger.Component("settings.Service"),
			logger.String("action", action),
			logger.Err(err),
		)
		return nil
	}
	if remaining > 0 {
		return &CooldownError{Action: action, RetryAfter: remaining}
	}
	return nil
}

// markCooldown registra la ventana tras una operación exitosa.
func (s *Service) markCooldown(ctx context.Context, action, uid string, ttl time.Duration) {
	if err := s.cooldowns.Mark(ctx, action, uid, ttl); err != nil {
		logger.From(ctx).Warn("cooldown mark failed",
			logger.Component("settings.Service"),
			logger.String("action", action),
			logger.Err(err),
		)
	}
}
