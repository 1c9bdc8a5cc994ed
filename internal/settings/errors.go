package settings

import (
	"errors"
	"fmt"
	"time"
)

// Code es el código estable que consumen los clientes. Los valores son parte
// del contrato con el frontend y no se renombran.
type Code string

const (
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeBackendUnavailable Code = "ADMIN_SDK_UNAVAILABLE"
	CodeStoreError         Code = "FIRESTORE_ERROR"
	CodeEmailUnconfigured  Code = "EMAIL_TRANSPORT_UNCONFIGURED"
	CodeRollbackInvalid    Code = "ROLLBACK_INVALID"
)

// AccessError es el error tipado de acceso/configuración que el caller puede
// mostrar tal cual, con remediación según el código.
type AccessError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AccessError) Unwrap() error { return e.Err }

func accessErr(code Code, msg string, err error) *AccessError {
	return &AccessError{Code: code, Message: msg, Err: err}
}

// AsAccessError extrae el AccessError de una cadena de errores.
func AsAccessError(err error) (*AccessError, bool) {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ValidationError es un error de input malformado, rechazado antes de
// cualquier side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return "validation: " + e.Message
}

func validationErr(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// AsValidationError extrae el ValidationError de una cadena de errores.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// CooldownError indica que la acción fue invocada dentro de su ventana de
// cooldown. Deliberadamente no es un AccessError: el caller lo trata como un
// error de usuario no-reintentable hasta que pase RetryAfter.
type CooldownError struct {
	Action     string
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %s", e.Action, e.RetryAfter.Round(time.Second))
}

// AsCooldownError extrae el CooldownError de una cadena de errores.
func AsCooldownError(err error) (*CooldownError, bool) {
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ErrReauthFailed es el error plano de reautenticación inválida (mal token,
// otro principal, o password incorrecto al emitirlo).
var ErrReauthFailed = errors.New("reauthentication failed")
