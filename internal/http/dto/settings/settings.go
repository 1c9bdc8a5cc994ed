package settings

import (
	"time"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

// ─── Requests ───

// ProfileUpdateRequest es el PATCH de perfil. Los punteros distinguen
// "no tocar" (nil) de "poner vacío" ("").
type ProfileUpdateRequest struct {
	DisplayName       *string `json:"display_name,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	Timezone          *string `json:"timezone,omitempty"`
	AvatarStoragePath *string `json:"avatar_storage_path,omitempty"`
}

// NotificationsUpdateRequest reemplaza la sección de notificaciones completa.
type NotificationsUpdateRequest struct {
	EmailEnabled bool                   `json:"email_enabled"`
	InAppEnabled bool                   `json:"in_app_enabled"`
	Events       map[string]bool        `json:"events,omitempty"`
	QuietHours   *repository.QuietHours `json:"quiet_hours,omitempty"`
}

// AppearanceUpdateRequest reemplaza la sección de apariencia completa.
type AppearanceUpdateRequest struct {
	Theme         string `json:"theme"`
	AccentColor   string `json:"accent_color"`
	Density       string `json:"density"`
	ReducedMotion bool   `json:"reduced_motion"`
}

// EmailChangeRequest inicia el cambio de email. Requiere reauth token fresco.
type EmailChangeRequest struct {
	NewEmail    string `json:"new_email"`
	ReauthToken string `json:"reauth_token"`
}

// ReauthRequest verifica el password y emite un reauth token corto.
type ReauthRequest struct {
	Password string `json:"password"`
}

// RollbackRequest consume un token de deshacer.
type RollbackRequest struct {
	Token string `json:"token"`
}

// ─── Responses ───

// SettingsResponse es el documento completo.
type SettingsResponse struct {
	Settings *repository.SettingsDocument `json:"settings"`
}

// MutationResponse es el documento resultante más la ventana de deshacer.
// RollbackToken puede venir vacío si el registro del token falló: la mutación
// se aplicó igual, solo que sin deshacer.
type MutationResponse struct {
	Settings      *repository.SettingsDocument `json:"settings"`
	RollbackToken string                       `json:"rollback_token,omitempty"`
	ExpiresAt     *time.Time                   `json:"rollback_expires_at,omitempty"`
}

// AvatarUploadResponse es el resultado de subir el binario del avatar.
// El path devuelto se manda después en el PATCH de perfil.
type AvatarUploadResponse struct {
	URL         string `json:"url"`
	StoragePath string `json:"storage_path"`
}

// ReauthResponse contiene el token corto para operaciones sensibles.
type ReauthResponse struct {
	ReauthToken string `json:"reauth_token"`
	ExpiresIn   int    `json:"expires_in"` // segundos
}

// EmailFlowResponse confirma que el email salió (o que estamos en modo demo).
type EmailFlowResponse struct {
	Status string `json:"status"` // sent
}
