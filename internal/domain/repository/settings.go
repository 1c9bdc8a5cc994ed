package repository

import (
	"context"
	"time"
)

// SettingsDocument es el documento de configuración de un administrador.
// Existe exactamente un documento por principal (uid); se crea lazy con
// defaults en la primera lectura si no existe.
type SettingsDocument struct {
	UID           string               `json:"uid"`
	Profile       ProfileSettings      `json:"profile"`
	Notifications NotificationSettings `json:"notifications"`
	Appearance    AppearanceSettings   `json:"appearance"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ProfileSettings contiene los datos de perfil visibles del administrador.
type ProfileSettings struct {
	DisplayName       string `json:"display_name"`
	Email             string `json:"email"`
	Bio               string `json:"bio,omitempty"`
	Timezone          string `json:"timezone"`
	AvatarURL         string `json:"avatar_url,omitempty"`
	AvatarStoragePath string `json:"avatar_storage_path,omitempty"`
}

// NotificationSettings contiene toggles de canales y de tipos de evento,
// más una ventana opcional de silencio (quiet hours).
type NotificationSettings struct {
	EmailEnabled bool            `json:"email_enabled"`
	InAppEnabled bool            `json:"in_app_enabled"`
	Events       map[string]bool `json:"events,omitempty"`
	QuietHours   *QuietHours     `json:"quiet_hours,omitempty"`
}

// QuietHours define la ventana diaria sin notificaciones, en formato "HH:MM".
type QuietHours struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AppearanceSettings contiene las preferencias de apariencia del panel.
type AppearanceSettings struct {
	Theme         string `json:"theme"`        // light | dark | system
	AccentColor   string `json:"accent_color"` // hex #rrggbb
	Density       string `json:"density"`      // comfortable | compact
	ReducedMotion bool   `json:"reduced_motion"`
}

// DocumentPatch es una actualización parcial de un SettingsDocument.
// El merge es shallow: cada sección no-nil reemplaza la sección completa.
type DocumentPatch struct {
	Profile       *ProfileSettings
	Notifications *NotificationSettings
	Appearance    *AppearanceSettings
}

// SettingsRepository define las operaciones CRUD sobre el documento de settings.
// Sin lógica de negocio: el orquestador decide qué y cuándo escribir.
type SettingsRepository interface {
	// Get retorna el documento del principal. ErrNotFound si no existe.
	Get(ctx context.Context, uid string) (*SettingsDocument, error)

	// Put escribe el documento completo (upsert).
	Put(ctx context.Context, doc *SettingsDocument) error
}
