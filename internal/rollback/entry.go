package rollback

import (
	"time"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

// IdentitySnapshot captura el estado del proveedor de identidad antes de un
// cambio de email, para poder revertirlo.
type IdentitySnapshot struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// Entry es el registro asociado a un rollback token: el documento previo a
// la mutación más las compensaciones a ejecutar según el destino del token.
type Entry struct {
	Token string `json:"token"`
	UID   string `json:"uid"`

	// PreviousDoc es el documento completo tal como estaba antes de la
	// mutación. Restaurarlo deshace la escritura.
	PreviousDoc *repository.SettingsDocument `json:"previous_doc"`

	// Identity es el snapshot del proveedor de identidad, solo presente en
	// mutaciones que lo tocaron (cambio de email).
	Identity *IdentitySnapshot `json:"identity,omitempty"`

	// OnRollback se ejecuta si el token se consume con éxito: deshace los
	// efectos laterales de la mutación (ej: borrar el avatar nuevo).
	OnRollback []Compensation `json:"on_rollback,omitempty"`

	// OnExpire se ejecuta cuando la ventana vence sin rollback: limpia lo
	// que la mutación dejó obsoleto (ej: borrar el avatar viejo).
	OnExpire []Compensation `json:"on_expire,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired indica si la ventana del token ya venció.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
