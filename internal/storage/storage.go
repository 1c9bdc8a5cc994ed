// Package storage abstrae el bucket de objetos donde viven los avatares.
package storage

import (
	"context"
	"io"
)

// ObjectStorage define las operaciones mínimas sobre el bucket.
type ObjectStorage interface {
	// Put sube el objeto y retorna su URL pública.
	Put(ctx context.Context, path string, contentType string, body io.Reader) (string, error)

	// Delete borra el objeto. Idempotente: borrar un path inexistente no es error.
	Delete(ctx context.Context, path string) error

	// PublicURL retorna la URL pública de un path (sin tocar el bucket).
	PublicURL(path string) string
}
