package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la API.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	RetryAfter int    `json:"-"` // Segundos para el header Retry-After (0 = sin header)
	Err        error  `json:"-"` // Causa original, útil para logs, no se expone al cliente
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail agrega detalles adicionales al error (útil para validaciones).
// Devuelve una COPIA del error para no mutar las variables globales base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa). Devuelve una COPIA del error.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// WithRetryAfter fija el header Retry-After en segundos. Devuelve una COPIA.
func (e *AppError) WithRetryAfter(seconds int) *AppError {
	newErr := *e
	newErr.RetryAfter = seconds
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

var (
	// ─── 4xx ───

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Uno o más campos no pasaron la validación.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Credenciales faltantes o inválidas.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrReauthRequired = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "La operación requiere reautenticación reciente.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método HTTP no permitido para esta ruta.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrRollbackInvalid = &AppError{
		Code:       "ROLLBACK_INVALID",
		Message:    "El token de rollback no existe, expiró o ya fue consumido.",
		HTTPStatus: http.StatusGone,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "El cuerpo de la solicitud excede el tamaño máximo permitido.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}

	ErrCooldownActive = &AppError{
		Code:       "COOLDOWN_ACTIVE",
		Message:    "La acción fue ejecutada hace poco; esperá antes de reintentar.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	// ─── 5xx ───

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Error interno del servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrStoreFailure = &AppError{
		Code:       "FIRESTORE_ERROR",
		Message:    "No se pudo leer o escribir el documento de configuración.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrBackendUnavailable = &AppError{
		Code:       "ADMIN_SDK_UNAVAILABLE",
		Message:    "El backend de identidad/configuración no está disponible.",
		HTTPStatus: http.StatusServiceUnavailable,
	}

	ErrEmailUnconfigured = &AppError{
		Code:       "EMAIL_TRANSPORT_UNCONFIGURED",
		Message:    "El transporte de email no está configurado.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
