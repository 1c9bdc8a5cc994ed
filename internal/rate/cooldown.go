// Package rate implementa los cooldowns de las operaciones de email.
// Un cooldown se marca SOLO cuando la operación tuvo éxito; una operación
// fallida no consume la ventana.
package rate

import (
	"context"
	"time"
)

// CooldownStore consulta y marca cooldowns por acción y principal.
type CooldownStore interface {
	// OnCooldown retorna cuánto falta para que la acción vuelva a estar
	// disponible. Cero si no hay cooldown activo.
	OnCooldown(ctx context.Context, action, uid string) (time.Duration, error)

	// Mark inicia la ventana de cooldown para la acción.
	Mark(ctx context.Context, action, uid string, ttl time.Duration) error
}

func cooldownKey(action, uid string) string {
	return "cooldown:" + action + ":" + uid
}
