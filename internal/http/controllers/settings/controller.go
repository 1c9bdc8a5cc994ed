package settings

import (
	stderrors "errors"
	"io"
	"math"
	"net/http"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
	dto "github.com/dropDatabas3/ajustes/internal/http/dto/settings"
	httperrors "github.com/dropDatabas3/ajustes/internal/http/errors"
	mw "github.com/dropDatabas3/ajustes/internal/http/middlewares"
	"github.com/dropDatabas3/ajustes/internal/metrics"
	"github.com/dropDatabas3/ajustes/internal/observability/logger"
	svc "github.com/dropDatabas3/ajustes/internal/settings"
)

// Controller expone las operaciones de configuración del panel de admin.
type Controller struct {
	service *svc.Service
}

func NewController(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// Get maneja GET /v1/settings.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := c.service.LoadSettings(ctx, mw.GetUID(ctx))
	if err != nil {
		c.writeServiceError(w, r, "Controller.Get", err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.SettingsResponse{Settings: doc})
}

// UpdateProfile maneja PATCH /v1/settings/profile.
func (c *Controller) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.ProfileUpdateRequest
	if !httperrors.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.UpdateProfile(ctx, mw.GetUID(ctx), svc.ProfileInput{
		DisplayName:       req.DisplayName,
		Bio:               req.Bio,
		Timezone:          req.Timezone,
		AvatarStoragePath: req.AvatarStoragePath,
	})
	if err != nil {
		metrics.RecordMutation("update_profile", mutationResult(err))
		c.writeServiceError(w, r, "Controller.UpdateProfile", err)
		return
	}
	metrics.RecordMutation("update_profile", "ok")
	httperrors.WriteJSON(w, http.StatusOK, mutationResponse(res))
}

// UploadAvatar maneja POST /v1/settings/avatar (multipart form, campo "file").
func (c *Controller) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// El límite real de 2MB lo aplica el servicio; acá dejamos margen para
	// el overhead del multipart.
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("multipart inválido"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("falta el campo file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("no se pudo leer el archivo"))
		return
	}

	up, err := c.service.UploadAvatar(ctx, mw.GetUID(ctx), header.Header.Get("Content-Type"), data)
	if err != nil {
		c.writeServiceError(w, r, "Controller.UploadAvatar", err)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, dto.AvatarUploadResponse{
		URL:         up.URL,
		StoragePath: up.StoragePath,
	})
}

// UpdateNotifications maneja PATCH /v1/settings/notifications.
func (c *Controller) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.NotificationsUpdateRequest
	if !httperrors.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.UpdateNotifications(ctx, mw.GetUID(ctx), repository.NotificationSettings{
		EmailEnabled: req.EmailEnabled,
		InAppEnabled: req.InAppEnabled,
		Events:       req.Events,
		QuietHours:   req.QuietHours,
	})
	if err != nil {
		metrics.RecordMutation("update_notifications", mutationResult(err))
		c.writeServiceError(w, r, "Controller.UpdateNotifications", err)
		return
	}
	metrics.RecordMutation("update_notifications", "ok")
	httperrors.WriteJSON(w, http.StatusOK, mutationResponse(res))
}

// UpdateAppearance maneja PATCH /v1/settings/appearance.
func (c *Controller) UpdateAppearance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.AppearanceUpdateRequest
	if !httperrors.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.UpdateAppearance(ctx, mw.GetUID(ctx), repository.AppearanceSettings{
		Theme:         req.Theme,
		AccentColor:   req.AccentColor,
		Density:       req.Density,
		ReducedMotion: req.ReducedMotion,
	})
	if err != nil {
		metrics.RecordMutation("update_appearance", mutationResult(err))
		c.writeServiceError(w, r, "Controller.UpdateAppearance", err)
		return
	}
	metrics.RecordMutation("update_appearance", "ok")
	httperrors.WriteJSON(w, http.StatusOK, mutationResponse(res))
}

// ResetAppearance maneja DELETE /v1/settings/appearance.
func (c *Controller) ResetAppearance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := c.service.ResetAppearance(ctx, mw.GetUID(ctx))
	if err != nil {
		metrics.RecordMutation("reset_appearance", mutationResult(err))
		c.writeServiceError(w, r, "Controller.ResetAppearance", err)
		return
	}
	metrics.RecordMutation("reset_appearance", "ok")
	httperrors.WriteJSON(w, http.StatusOK, mutationResponse(res))
}

// ChangeEmail maneja POST /v1/settings/email/change.
func (c *Controller) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.EmailChangeRequest
	if !httperrors.ReadJSON(w, r, &req) {
		return
	}
	if req.NewEmail == "" || req.ReauthToken == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("new_email y reauth_token son requeridos"))
		return
	}

	res, err := c.service.ChangeEmail(ctx, mw.GetUID(ctx), req.NewEmail, req.ReauthToken)
	if err != nil {
		metrics.RecordMutation("change_email", mutationResult(err))
		c.writeServiceError(w, r, "Controller.ChangeEmail", err)
		return
	}
	metrics.RecordMutation("change_email", "ok")
	httperrors.WriteJSON(w, http.StatusOK, mutationResponse(res))
}

// SendVerification maneja POST /v1/settings/email/verify.
func (c *Controller) SendVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.service.SendEmailVerification(ctx, mw.GetUID(ctx)); err != nil {
		c.writeServiceError(w, r, "Controller.SendVerification", err)
		return
	}
	httperrors.WriteJSON(w, http.StatusAccepted, dto.EmailFlowResponse{Status: "sent"})
}

// ConfirmEmail maneja GET /v1/settings/email/confirm?token=...
// Es el endpoint del link del email: no requiere sesión.
func (c *Controller) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("token es requerido"))
		return
	}

	if err := c.service.ConfirmEmail(ctx, token); err != nil {
		if stderrors.Is(err, svc.ErrVerificationInvalid) {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("link inválido, vencido o ya usado"))
			return
		}
		c.writeServiceError(w, r, "Controller.ConfirmEmail", err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// Reauth maneja POST /v1/settings/reauth.
func (c *Controller) Reauth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.ReauthRequest
	if !httperrors.ReadJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("password es requerido"))
		return
	}

	token, err := c.service.Reauth(ctx, mw.GetUID(ctx), req.Password)
	if err != nil {
		c.writeServiceError(w, r, "Controller.Reauth", err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.ReauthResponse{
		ReauthToken: token,
		ExpiresIn:   int(c.service.ReauthTTL().Seconds()),
	})
}

// Rollback maneja POST /v1/settings/rollback.
func (c *Controller) Rollback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.RollbackRequest
	if !httperrors.ReadJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("token es requerido"))
		return
	}

	doc, err := c.service.Rollback(ctx, req.Token)
	if err != nil {
		metrics.RecordRollback("invalid")
		c.writeServiceError(w, r, "Controller.Rollback", err)
		return
	}
	metrics.RecordRollback("restored")
	httperrors.WriteJSON(w, http.StatusOK, dto.SettingsResponse{Settings: doc})
}

// ─── Helpers ───

func mutationResponse(res *svc.MutationResult) dto.MutationResponse {
	out := dto.MutationResponse{
		Settings:      res.Settings,
		RollbackToken: res.RollbackToken,
	}
	if res.RollbackToken != "" {
		exp := res.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}

// mutationResult clasifica un error para la label de métricas.
func mutationResult(err error) string {
	if _, ok := svc.AsValidationError(err); ok {
		return "rejected"
	}
	if _, ok := svc.AsCooldownError(err); ok {
		return "rejected"
	}
	if stderrors.Is(err, svc.ErrReauthFailed) {
		return "rejected"
	}
	return "failed"
}

// writeServiceError traduce errores del orquestador a respuestas HTTP.
func (c *Controller) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op(op))

	if ve, ok := svc.AsValidationError(err); ok {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail(ve.Field+": "+ve.Message))
		return
	}
	if ce, ok := svc.AsCooldownError(err); ok {
		metrics.RecordCooldownReject(ce.Action)
		retry := int(math.Ceil(ce.RetryAfter.Seconds()))
		httperrors.WriteError(w, httperrors.ErrCooldownActive.WithRetryAfter(retry))
		return
	}
	if stderrors.Is(err, svc.ErrReauthFailed) {
		httperrors.WriteError(w, httperrors.ErrReauthRequired)
		return
	}
	if ae, ok := svc.AsAccessError(err); ok {
		switch ae.Code {
		case svc.CodeUnauthorized:
			httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail(ae.Message))
		case svc.CodeBackendUnavailable:
			httperrors.WriteError(w, httperrors.ErrBackendUnavailable.WithDetail(ae.Message))
		case svc.CodeStoreError:
			log.Error("store failure", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrStoreFailure)
		case svc.CodeEmailUnconfigured:
			httperrors.WriteError(w, httperrors.ErrEmailUnconfigured)
		case svc.CodeRollbackInvalid:
			httperrors.WriteError(w, httperrors.ErrRollbackInvalid)
		default:
			log.Error("unmapped access error", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	log.Error("unhandled service error", logger.Err(err))
	httperrors.WriteError(w, httperrors.ErrInternalServerError)
}
