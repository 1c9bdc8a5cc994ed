package settings

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
	"github.com/dropDatabas3/ajustes/internal/email"
	"github.com/dropDatabas3/ajustes/internal/observability/logger"
	"github.com/dropDatabas3/ajustes/internal/rollback"
	"github.com/dropDatabas3/ajustes/internal/security/password"
)

// ErrVerificationInvalid indica un link de verificación inexistente, vencido
// o ya usado.
var ErrVerificationInvalid = errors.New("verification link invalid or expired")

// newVerificationToken genera el token crudo (va en el link) y su hash
// sha256 (va a la DB). El crudo nunca se persiste.
func newVerificationToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	return raw, hex.EncodeToString(sum[:]), nil
}

func hashVerificationToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// identityErr mapea errores del proveedor de identidad al código de contrato.
func identityErr(msg string, err error) *AccessError {
	return accessErr(CodeBackendUnavailable, msg, err)
}

// ChangeEmail es el flujo más delicado: escribe en tres sistemas (identidad,
// email, documento) con compensación inmediata ante fallos intermedios.
func (s *Service) ChangeEmail(ctx context.Context, uid, newEmail, reauthToken string) (*MutationResult, error) {
	log := logger.From(ctx).With(
		logger.Component("settings.Service"),
		logger.Op("ChangeEmail"),
		logger.UID(uid),
	)

	// 1. Cooldown primero: el rechazo no toca identidad ni transporte.
	if err := s.checkCooldown(ctx, actionChangeEmail, uid); err != nil {
		return nil, err
	}

	newEmail = strings.TrimSpace(strings.ToLower(newEmail))
	if err := validateEmail(newEmail); err != nil {
		return nil, err
	}

	// 2. El reauth token debe autenticar al mismo principal de la sesión.
	if err := s.tokens.VerifyReauth(reauthToken, uid); err != nil {
		log.Debug("reauth rejected", logger.Err(err))
		return nil, ErrReauthFailed
	}

	// 3. Snapshot del registro de identidad antes de tocarlo.
	rec, err := s.identity.GetByUID(ctx, uid)
	if err != nil {
		return nil, identityErr("no se pudo leer el registro de identidad", err)
	}
	prev := rollback.IdentitySnapshot{Email: rec.Email, Verified: rec.EmailVerified}

	if newEmail == rec.Email {
		return nil, validationErr("email", "es el email actual")
	}

	// 4. Generar el link de verificación antes de mutar nada irreversible.
	raw, hash, err := newVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generar token de verificación: %w", err)
	}
	if _, err := s.verifyTokens.Create(ctx, repository.CreateVerificationTokenInput{
		UID:       uid,
		Email:     newEmail,
		TokenHash: hash,
		TTL:       s.cfg.VerifyTTL,
	}); err != nil {
		return nil, s.storeErr("no se pudo emitir el token de verificación", err)
	}
	link := s.emails.ConfirmLink(raw)

	// 5. Actualizar identidad: email nuevo, sin verificar.
	if err := s.identity.UpdateEmail(ctx, uid, newEmail, false); err != nil {
		return nil, identityErr("no se pudo actualizar el email", err)
	}

	// 6. Enviar. Si falla, la mutación de identidad no puede sobrevivir: el
	// admin quedaría sin forma de confirmar un email que nunca vio.
	if err := s.emails.SendChangeConfirmation(ctx, newEmail, link, s.cfg.VerifyTTL); err != nil {
		s.revertIdentity(ctx, uid, prev)
		if errors.Is(err, email.ErrUnconfigured) {
			return nil, accessErr(CodeEmailUnconfigured, "transporte de email no configurado", err)
		}
		return nil, fmt.Errorf("no se pudo enviar la confirmación: %w", err)
	}

	// 7. Persistir el email nuevo en el documento, con el snapshot de
	// identidad en la entrada de rollback: deshacer restaura ambos sistemas.
	current, err := s.LoadSettings(ctx, uid)
	if err != nil {
		s.revertIdentity(ctx, uid, prev)
		return nil, err
	}
	profile := current.Profile
	profile.Email = newEmail

	res, err := s.persistUpdates(ctx, uid, repository.DocumentPatch{Profile: &profile}, persistOptions{
		current:  current,
		identity: &prev,
	})
	if err != nil {
		// 8. Mismo revert que en el paso 6.
		s.revertIdentity(ctx, uid, prev)
		return nil, err
	}

	// 9. Cooldown solo tras el éxito completo.
	s.markCooldown(ctx, actionChangeEmail, uid, s.cfg.ChangeEmailCooldown)
	log.Info("email change initiated", logger.Email(newEmail))
	return res, nil
}

// revertIdentity deshace la mutación de identidad de un changeEmail fallido.
// Best-effort: un fallo acá se loguea sin enmascarar el error original.
func (s *Service) revertIdentity(ctx context.Context, uid string, prev rollback.IdentitySnapshot) {
	if err := s.identity.UpdateEmail(ctx, uid, prev.Email, prev.Verified); err != nil {
		logger.From(ctx).Error("identity revert failed",
			logger.Component("settings.Service"),
			logger.UID(uid),
			logger.Err(err),
		)
	}
}

// SendEmailVerification reenvía el link de verificación del email actual.
// Rate-limited; no muta el documento ni emite rollback token.
func (s *Service) SendEmailVerification(ctx context.Context, uid string) error {
	if err := s.checkCooldown(ctx, actionSendVerification, uid); err != nil {
		return err
	}

	rec, err := s.identity.GetByUID(ctx, uid)
	if err != nil {
		return identityErr("no se pudo leer el registro de identidad", err)
	}
	if rec.EmailVerified {
		return validationErr("email", "el email ya está verificado")
	}

	raw, hash, err := newVerificationToken()
	if err != nil {
		return fmt.Errorf("generar token de verificación: %w", err)
	}
	if _, err := s.verifyTokens.Create(ctx, repository.CreateVerificationTokenInput{
		UID:       uid,
		Email:     rec.Email,
		TokenHash: hash,
		TTL:       s.cfg.VerifyTTL,
	}); err != nil {
		return s.storeErr("no se pudo emitir el token de verificación", err)
	}

	if err := s.emails.SendVerification(ctx, rec.Email, s.emails.ConfirmLink(raw), s.cfg.VerifyTTL); err != nil {
		if errors.Is(err, email.ErrUnconfigured) {
			return accessErr(CodeEmailUnconfigured, "transporte de email no configurado", err)
		}
		return fmt.Errorf("no se pudo enviar la verificación: %w", err)
	}

	s.markCooldown(ctx, actionSendVerification, uid, s.cfg.SendVerificationCooldown)
	return nil
}

// ConfirmEmail consume un link de verificación y marca el email como
// verificado si el registro de identidad todavía apunta a esa dirección.
func (s *Service) ConfirmEmail(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return ErrVerificationInvalid
	}

	vt, err := s.verifyTokens.Use(ctx, hashVerificationToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrTokenExpired) ||
			errors.Is(err, repository.ErrTokenUsed) {
			return ErrVerificationInvalid
		}
		return s.storeErr("no se pudo consumir el token de verificación", err)
	}

	rec, err := s.identity.GetByUID(ctx, vt.UID)
	if err != nil {
		return identityErr("no se pudo leer el registro de identidad", err)
	}
	// El email pudo cambiar de nuevo (o revertirse) después de emitir el
	// link: un link viejo no verifica una dirección que ya no es la actual.
	if rec.Email != vt.Email {
		return ErrVerificationInvalid
	}

	if err := s.identity.SetEmailVerified(ctx, vt.UID, true); err != nil {
		return identityErr("no se pudo marcar el email como verificado", err)
	}

	logger.From(ctx).Info("email verified",
		logger.Component("settings.Service"),
		logger.UID(vt.UID),
	)
	return nil
}

// Reauth verifica el password del principal y emite el token corto que
// habilita operaciones sensibles (cambio de email).
func (s *Service) Reauth(ctx context.Context, uid, plainPassword string) (string, error) {
	rec, err := s.identity.GetByUID(ctx, uid)
	if err != nil {
		return "", identityErr("no se pudo leer el registro de identidad", err)
	}
	if rec.PasswordHash == nil || !password.Verify(plainPassword, *rec.PasswordHash) {
		return "", ErrReauthFailed
	}
	return s.tokens.IssueReauth(uid, s.cfg.ReauthTTL)
}
