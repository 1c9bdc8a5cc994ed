// Package jwt firma y valida los tokens del servicio: el access token de
// sesión del panel y el token corto de reautenticación.
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("jwt: invalid token")
	ErrWrongPurpose    = errors.New("jwt: wrong token purpose")
	ErrSubjectMismatch = errors.New("jwt: subject mismatch")
)

// Manager firma y valida tokens HS256 con un secreto compartido.
type Manager struct {
	secret []byte
	issuer string
}

// NewManager crea el manager. El secreto debe venir de configuración, nunca
// hardcodeado.
func NewManager(secret, issuer string) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer}
}

func (m *Manager) keyfunc(t *jwtv5.Token) (any, error) {
	return m.secret, nil
}

// ParseSession valida un access token de sesión y retorna el uid (sub).
func (m *Manager) ParseSession(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}
	// Un token de reauth no sirve como sesión
	if purpose, _ := claims["purpose"].(string); purpose != "" && purpose != "session" {
		return "", ErrWrongPurpose
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// IssueReauth emite un token corto de reautenticación para el principal.
// Se entrega tras verificar el password y habilita operaciones sensibles.
func (m *Manager) IssueReauth(uid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss":     m.issuer,
		"sub":     uid,
		"purpose": "reauth",
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tok.SignedString(m.secret)
}

// VerifyReauth valida un token de reauth y que pertenezca al principal dado.
func (m *Manager) VerifyReauth(token, uid string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}
	if purpose, _ := claims["purpose"].(string); purpose != "reauth" {
		return ErrWrongPurpose
	}
	if sub, _ := claims["sub"].(string); sub != uid {
		return ErrSubjectMismatch
	}
	return nil
}

// IssueSession emite un access token de sesión (para tooling y tests).
func (m *Manager) IssueSession(uid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss":     m.issuer,
		"sub":     uid,
		"purpose": "session",
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tok.SignedString(m.secret)
}

func (m *Manager) parse(token string) (jwtv5.MapClaims, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(30 * time.Second),
	}
	if m.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(m.issuer))
	}
	tok, err := jwtv5.Parse(token, m.keyfunc, opts...)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
