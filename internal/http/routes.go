package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	settingsctl "github.com/dropDatabas3/ajustes/internal/http/controllers/settings"
	mw "github.com/dropDatabas3/ajustes/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/ajustes/internal/jwt"
)

// RouterDeps agrupa lo que el router necesita para armar las rutas.
type RouterDeps struct {
	Settings *settingsctl.Controller
	Tokens   *jwtx.Manager
	Metrics  stdhttp.Handler // handler de /metrics; nil lo deshabilita
	Readyz   stdhttp.HandlerFunc
}

// NewRouter arma el router completo con la cadena de middlewares base.
func NewRouter(deps RouterDeps) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID(), mw.WithLogging(), mw.WithRecover(), WithMetrics)

	// Health
	r.Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Readyz != nil {
		r.Get("/readyz", deps.Readyz)
	}
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	// Link del email: sin sesión, el token del query es la credencial
	r.Get("/v1/settings/email/confirm", deps.Settings.ConfirmEmail)

	// Todo lo demás requiere sesión
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(deps.Tokens))

		r.Get("/v1/settings", deps.Settings.Get)
		r.Patch("/v1/settings/profile", deps.Settings.UpdateProfile)
		r.Post("/v1/settings/avatar", deps.Settings.UploadAvatar)
		r.Patch("/v1/settings/notifications", deps.Settings.UpdateNotifications)
		r.Patch("/v1/settings/appearance", deps.Settings.UpdateAppearance)
		r.Delete("/v1/settings/appearance", deps.Settings.ResetAppearance)
		r.Post("/v1/settings/email/change", deps.Settings.ChangeEmail)
		r.Post("/v1/settings/email/verify", deps.Settings.SendVerification)
		r.Post("/v1/settings/reauth", deps.Settings.Reauth)
		r.Post("/v1/settings/rollback", deps.Settings.Rollback)
	})

	return r
}
