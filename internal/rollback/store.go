package rollback

import (
	"context"
	"errors"
)

// ErrNotFound indica que el token no existe: nunca emitido, ya consumido o
// ya barrido por expiración.
var ErrNotFound = errors.New("rollback: token not found")

// Store persiste las entradas de rollback pendientes.
//
// Consume es la operación que resuelve carreras: elimina el token de forma
// atómica, y exactamente un caller lo recibe. Quien pierde obtiene
// ErrNotFound. Esto vale tanto para el rollback explícito como para la
// carrera rollback-vs-sweep.
type Store interface {
	// Put registra una entrada nueva bajo su token.
	Put(ctx context.Context, e *Entry) error

	// Get retorna la entrada sin consumirla. Puede retornar entradas ya
	// vencidas: el caller decide qué hacer con ellas.
	Get(ctx context.Context, token string) (*Entry, error)

	// Consume elimina el token y retorna la entrada. ErrNotFound si otro
	// caller lo consumió primero.
	Consume(ctx context.Context, token string) (*Entry, error)

	// SweepExpired elimina las entradas vencidas e invoca fn por cada una
	// que este caller ganó. Retorna cuántas barrió.
	SweepExpired(ctx context.Context, fn func(context.Context, *Entry)) (int, error)
}
