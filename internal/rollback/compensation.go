// Package rollback implementa los tokens de deshacer de las mutaciones de
// settings: registro con TTL, consumo de un solo uso y acciones
// compensatorias por recurso.
package rollback

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/ajustes/internal/observability/logger"
)

// CompensationKind identifica el tipo de acción compensatoria.
type CompensationKind string

const (
	// KindDeleteObject borra un objeto del bucket (avatares).
	KindDeleteObject CompensationKind = "delete_object"
)

// Compensation es una acción compensatoria descripta como dato, no como
// closure: así las entradas pueden serializarse a Redis y sobrevivir a un
// reinicio del proceso.
type Compensation struct {
	Kind CompensationKind `json:"kind"`
	Path string           `json:"path,omitempty"`
}

// DeleteObject construye la compensación que borra un objeto del bucket.
func DeleteObject(path string) Compensation {
	return Compensation{Kind: KindDeleteObject, Path: path}
}

// ObjectDeleter es lo mínimo que el ejecutor necesita del bucket.
type ObjectDeleter interface {
	Delete(ctx context.Context, path string) error
}

// Compensator ejecuta listas de compensaciones. Los fallos individuales se
// loguean y no cortan la ejecución del resto: una compensación que falla no
// debe impedir las demás.
type Compensator struct {
	objects ObjectDeleter
}

// NewCompensator crea el ejecutor con sus dependencias.
func NewCompensator(objects ObjectDeleter) *Compensator {
	return &Compensator{objects: objects}
}

// Run ejecuta todas las compensaciones. Retorna el primer error visto, pero
// siempre intenta el resto.
func (c *Compensator) Run(ctx context.Context, comps []Compensation) error {
	var first error
	for _, comp := range comps {
		if err := c.run(ctx, comp); err != nil {
			logger.From(ctx).Warn("compensation failed",
				logger.Component("rollback.Compensator"),
				logger.String("kind", string(comp.Kind)),
				logger.StoragePath(comp.Path),
				logger.Err(err),
			)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (c *Compensator) run(ctx context.Context, comp Compensation) error {
	switch comp.Kind {
	case KindDeleteObject:
		if c.objects == nil {
			return fmt.Errorf("rollback: no object storage configured")
		}
		return c.objects.Delete(ctx, comp.Path)
	default:
		return fmt.Errorf("rollback: unknown compensation kind %q", comp.Kind)
	}
}
