package middlewares

import "context"

type ctxKey string

const (
	// ctxUIDKey guarda el uid extraído del token de sesión
	ctxUIDKey ctxKey = "uid"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// WithUID inyecta el uid del principal en el contexto
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxUIDKey, uid)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetUID obtiene el uid del contexto. Cadena vacía si nadie autenticó.
func GetUID(ctx context.Context) string {
	if v := ctx.Value(ctxUIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
