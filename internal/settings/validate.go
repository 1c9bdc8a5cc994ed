package settings

import (
	"net/mail"
	"strings"
	"time"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

const (
	maxDisplayName = 80
	maxBio         = 500
)

func validateProfile(in ProfileInput) error {
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return validationErr("display_name", "no puede estar vacío")
		}
		if len(name) > maxDisplayName {
			return validationErr("display_name", "demasiado largo")
		}
	}
	if in.Bio != nil && len(*in.Bio) > maxBio {
		return validationErr("bio", "demasiado largo")
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return validationErr("timezone", "zona horaria desconocida")
		}
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationErr("email", "email inválido")
	}
	return nil
}

func validateNotifications(ns repository.NotificationSettings) error {
	for event := range ns.Events {
		if strings.TrimSpace(event) == "" {
			return validationErr("events", "tipo de evento vacío")
		}
	}
	if qh := ns.QuietHours; qh != nil {
		if !validClock(qh.From) || !validClock(qh.To) {
			return validationErr("quiet_hours", "horario esperado en formato HH:MM")
		}
	}
	return nil
}

// validClock acepta "HH:MM" en rango 00:00–23:59.
func validClock(s string) bool {
	t, err := time.Parse("15:04", s)
	return err == nil && t.Format("15:04") == s
}

func validateAppearance(as repository.AppearanceSettings) error {
	switch as.Theme {
	case "light", "dark", "system":
	default:
		return validationErr("theme", "debe ser light, dark o system")
	}
	switch as.Density {
	case "comfortable", "compact":
	default:
		return validationErr("density", "debe ser comfortable o compact")
	}
	return validateAccent(as.AccentColor, as.Theme)
}
