package settings

import "github.com/dropDatabas3/ajustes/internal/domain/repository"

// cloneDocument copia el documento en profundidad. El snapshot previo de un
// rollback no puede compartir estructuras mutables con el documento vivo.
func cloneDocument(d *repository.SettingsDocument) *repository.SettingsDocument {
	cp := *d
	if d.Notifications.Events != nil {
		events := make(map[string]bool, len(d.Notifications.Events))
		for k, v := range d.Notifications.Events {
			events[k] = v
		}
		cp.Notifications.Events = events
	}
	if d.Notifications.QuietHours != nil {
		qh := *d.Notifications.QuietHours
		cp.Notifications.QuietHours = &qh
	}
	return &cp
}

// mergeDocument aplica un patch shallow: cada sección no-nil reemplaza la
// sección completa del documento. Retorna un documento nuevo.
func mergeDocument(current *repository.SettingsDocument, patch repository.DocumentPatch) *repository.SettingsDocument {
	merged := cloneDocument(current)
	if patch.Profile != nil {
		merged.Profile = *patch.Profile
	}
	if patch.Notifications != nil {
		merged.Notifications = *patch.Notifications
	}
	if patch.Appearance != nil {
		merged.Appearance = *patch.Appearance
	}
	return merged
}
