package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/ajustes/internal/http/errors"
	jwtx "github.com/dropDatabas3/ajustes/internal/jwt"
)

// RequireSession valida Authorization: Bearer <JWT de sesión> y guarda el uid
// en el contexto. Si el token es inválido o no está presente, responde 401.
func RequireSession(tokens *jwtx.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("missing bearer token"))
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			uid, err := tokens.ParseSession(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				errors.WriteError(w, errors.ErrUnauthorized.WithCause(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUID(r.Context(), uid)))
		})
	}
}
