package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// extByContentType mapea los content-types de imagen aceptados a extensión.
var extByContentType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AllowedImageType indica si el content-type es aceptado para avatares.
func AllowedImageType(contentType string) bool {
	_, ok := extByContentType[strings.ToLower(contentType)]
	return ok
}

// AvatarPath calcula el path content-addressed de un avatar:
// avatars/<uid>/<sha256(data)[:16]><ext>. Subir dos veces la misma imagen
// produce el mismo path, así el reemplazo no-op no genera huérfanos.
func AvatarPath(uid string, contentType string, data []byte) string {
	sum := sha256.Sum256(data)
	ext := extByContentType[strings.ToLower(contentType)]
	return "avatars/" + uid + "/" + hex.EncodeToString(sum[:8]) + ext
}
