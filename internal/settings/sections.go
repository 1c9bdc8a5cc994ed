package settings

import (
	"context"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

// UpdateNotifications reemplaza la sección de notificaciones completa.
func (s *Service) UpdateNotifications(ctx context.Context, uid string, ns repository.NotificationSettings) (*MutationResult, error) {
	if err := validateNotifications(ns); err != nil {
		return nil, err
	}
	return s.persistUpdates(ctx, uid, repository.DocumentPatch{Notifications: &ns}, persistOptions{})
}

// UpdateAppearance reemplaza la sección de apariencia completa. El acento se
// valida por contraste contra el foreground del tema antes de escribir.
func (s *Service) UpdateAppearance(ctx context.Context, uid string, as repository.AppearanceSettings) (*MutationResult, error) {
	if err := validateAppearance(as); err != nil {
		return nil, err
	}
	return s.persistUpdates(ctx, uid, repository.DocumentPatch{Appearance: &as}, persistOptions{})
}

// ResetAppearance vuelve la apariencia a los defaults del sistema. También
// emite rollback token: un reset es una mutación más.
func (s *Service) ResetAppearance(ctx context.Context, uid string) (*MutationResult, error) {
	as := defaultAppearance()
	return s.persistUpdates(ctx, uid, repository.DocumentPatch{Appearance: &as}, persistOptions{})
}
