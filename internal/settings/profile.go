package settings

import (
	"bytes"
	"context"
	"strings"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
	"github.com/dropDatabas3/ajustes/internal/observability/logger"
	"github.com/dropDatabas3/ajustes/internal/rollback"
	"github.com/dropDatabas3/ajustes/internal/storage"
)

// maxAvatarBytes limita el tamaño del avatar (2 MiB).
const maxAvatarBytes = 2 << 20

// ProfileInput es el patch de perfil. Los punteros nil significan "sin
// cambio"; AvatarStoragePath nil = sin cambio, "" = quitar avatar.
type ProfileInput struct {
	DisplayName       *string
	Bio               *string
	Timezone          *string
	AvatarStoragePath *string
}

// AvatarUpload es el resultado de subir un avatar al bucket. No muta el
// documento: el caller referencia StoragePath en un updateProfile posterior.
type AvatarUpload struct {
	URL         string `json:"url"`
	StoragePath string `json:"storage_path"`
}

// UploadAvatar sube la imagen al bucket con path content-addressed y
// retorna su ubicación. Sin token de rollback: el objeto recién subido no es
// visible hasta que un updateProfile lo referencie.
func (s *Service) UploadAvatar(ctx context.Context, uid, mimeType string, data []byte) (*AvatarUpload, error) {
	if len(data) == 0 {
		return nil, validationErr("file", "archivo vacío")
	}
	if len(data) > maxAvatarBytes {
		return nil, validationErr("file", "el avatar no puede superar 2MB")
	}
	if !storage.AllowedImageType(mimeType) {
		return nil, validationErr("file", "tipo de imagen no soportado")
	}

	path := storage.AvatarPath(uid, mimeType, data)
	url, err := s.objects.Put(ctx, path, mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, accessErr(CodeStoreError, "no se pudo subir el avatar", err)
	}

	logger.From(ctx).Info("avatar uploaded",
		logger.Component("settings.Service"),
		logger.UID(uid),
		logger.StoragePath(path),
	)
	return &AvatarUpload{URL: url, StoragePath: path}, nil
}

// UpdateProfile aplica el patch de perfil. El diff del avatarStoragePath
// contra el documento actual clasifica el cambio y deriva las
// compensaciones de la entrada de rollback.
func (s *Service) UpdateProfile(ctx context.Context, uid string, in ProfileInput) (*MutationResult, error) {
	if err := validateProfile(in); err != nil {
		return nil, err
	}

	current, err := s.LoadSettings(ctx, uid)
	if err != nil {
		return nil, err
	}

	profile := current.Profile
	if in.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.Timezone != nil {
		profile.Timezone = *in.Timezone
	}

	oldPath := current.Profile.AvatarStoragePath
	var onRollback, onExpire []rollback.Compensation
	newAvatarPath := ""

	if in.AvatarStoragePath != nil {
		newPath := *in.AvatarStoragePath
		switch {
		case newPath == oldPath:
			// Sin cambio de avatar
		case newPath != "":
			// Avatar nuevo: deshacer descarta el objeto nuevo; expirar
			// vuelve inalcanzable al viejo.
			profile.AvatarStoragePath = newPath
			profile.AvatarURL = s.objects.PublicURL(newPath)
			onRollback = append(onRollback, rollback.DeleteObject(newPath))
			if oldPath != "" {
				onExpire = append(onExpire, rollback.DeleteObject(oldPath))
			}
			newAvatarPath = newPath
		default:
			// Avatar quitado: deshacer restaura el path viejo (el objeto
			// sigue intacto); expirar lo limpia.
			profile.AvatarStoragePath = ""
			profile.AvatarURL = ""
			if oldPath != "" {
				onExpire = append(onExpire, rollback.DeleteObject(oldPath))
			}
		}
	}

	res, err := s.persistUpdates(ctx, uid, repository.DocumentPatch{Profile: &profile}, persistOptions{
		current:    current,
		onRollback: onRollback,
		onExpire:   onExpire,
	})
	if err != nil {
		// La escritura falló después de subir el avatar nuevo: todavía no
		// existe token que lo limpie, así que el borrado es manual.
		if newAvatarPath != "" {
			if derr := s.objects.Delete(ctx, newAvatarPath); derr != nil {
				logger.From(ctx).Warn("orphaned avatar cleanup failed",
					logger.Component("settings.Service"),
					logger.UID(uid),
					logger.StoragePath(newAvatarPath),
					logger.Err(derr),
				)
			}
		}
		return nil, err
	}
	return res, nil
}
