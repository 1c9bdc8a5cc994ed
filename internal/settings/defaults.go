package settings

import (
	"time"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

// Defaults del sistema. Se aplican al crear el documento lazy en la primera
// lectura y en resetAppearance.
const (
	defaultTheme    = "system"
	defaultAccent   = "#2563eb"
	defaultDensity  = "comfortable"
	defaultTimezone = "UTC"
)

func defaultAppearance() repository.AppearanceSettings {
	return repository.AppearanceSettings{
		Theme:         defaultTheme,
		AccentColor:   defaultAccent,
		Density:       defaultDensity,
		ReducedMotion: false,
	}
}

func defaultNotifications() repository.NotificationSettings {
	return repository.NotificationSettings{
		EmailEnabled: true,
		InAppEnabled: true,
		Events: map[string]bool{
			"orders":   true,
			"mentions": true,
			"system":   true,
		},
	}
}

// defaultDocument construye el documento inicial de un principal. El email
// viene del registro de identidad cuando está disponible.
func defaultDocument(uid, identityEmail string) *repository.SettingsDocument {
	return &repository.SettingsDocument{
		UID: uid,
		Profile: repository.ProfileSettings{
			Email:    identityEmail,
			Timezone: defaultTimezone,
		},
		Notifications: defaultNotifications(),
		Appearance:    defaultAppearance(),
		UpdatedAt:     time.Now().UTC(),
	}
}
