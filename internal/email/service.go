package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htemplate "html/template"
	"net/url"
	ttemplate "text/template"
	"time"

	"github.com/dropDatabas3/ajustes/internal/observability/logger"
)

// ErrUnconfigured indica que no hay transporte SMTP configurado.
// El caller decide cómo exponerlo (en producción es un 503).
var ErrUnconfigured = errors.New("email: transport not configured")

// ServiceConfig configura el servicio de emails transaccionales.
type ServiceConfig struct {
	Sender  Sender // nil = sin transporte
	BaseURL string // base para construir links de confirmación

	// DemoMode degrada los envíos a no-op con log, en vez de fallar.
	DemoMode bool

	// DebugEchoLinks loguea el link completo (solo dev).
	DebugEchoLinks bool
}

// Service construye los links de confirmación y despacha los envíos.
type Service struct {
	sender         Sender
	baseURL        string
	demoMode       bool
	debugEchoLinks bool

	changeHTML *htemplate.Template
	changeText *ttemplate.Template
	verifyHTML *htemplate.Template
	verifyText *ttemplate.Template
}

// NewService crea el servicio con los templates embebidos.
func NewService(cfg ServiceConfig) (*Service, error) {
	s := &Service{
		sender:         cfg.Sender,
		baseURL:        cfg.BaseURL,
		demoMode:       cfg.DemoMode,
		debugEchoLinks: cfg.DebugEchoLinks,
	}

	var err error
	if s.changeHTML, err = htemplate.New("change_html").Parse(changeHTMLTmpl); err != nil {
		return nil, fmt.Errorf("parse change html template: %w", err)
	}
	if s.changeText, err = ttemplate.New("change_text").Parse(changeTextTmpl); err != nil {
		return nil, fmt.Errorf("parse change text template: %w", err)
	}
	if s.verifyHTML, err = htemplate.New("verify_html").Parse(verifyHTMLTmpl); err != nil {
		return nil, fmt.Errorf("parse verify html template: %w", err)
	}
	if s.verifyText, err = ttemplate.New("verify_text").Parse(verifyTextTmpl); err != nil {
		return nil, fmt.Errorf("parse verify text template: %w", err)
	}
	return s, nil
}

// ConfirmLink construye el link de confirmación con el token en query.
func (s *Service) ConfirmLink(token string) string {
	return s.baseURL + "/v1/settings/email/confirm?token=" + url.QueryEscape(token)
}

// SendChangeConfirmation envía el correo de confirmación de cambio de email
// a la dirección NUEVA. Retorna ErrUnconfigured si no hay transporte y no
// estamos en modo demo.
func (s *Service) SendChangeConfirmation(ctx context.Context, to, link string, ttl time.Duration) error {
	return s.send(ctx, "change", to, "Confirma tu nuevo email", s.changeHTML, s.changeText, linkVars{
		Email: to,
		Link:  link,
		TTL:   ttl.String(),
	})
}

// SendVerification envía el correo de re-verificación del email actual.
func (s *Service) SendVerification(ctx context.Context, to, link string, ttl time.Duration) error {
	return s.send(ctx, "verify", to, "Verifica tu email", s.verifyHTML, s.verifyText, linkVars{
		Email: to,
		Link:  link,
		TTL:   ttl.String(),
	})
}

func (s *Service) send(ctx context.Context, kind, to, subject string, html *htemplate.Template, text *ttemplate.Template, vars linkVars) error {
	log := logger.From(ctx).With(
		logger.Component("email.Service"),
		logger.String("kind", kind),
		logger.String("to", to),
	)

	if s.debugEchoLinks {
		log.Debug("confirmation link", logger.String("link", vars.Link))
	}

	if s.sender == nil {
		if s.demoMode {
			log.Info("demo mode: email send skipped")
			return nil
		}
		return ErrUnconfigured
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := html.Execute(&htmlBuf, vars); err != nil {
		return fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := text.Execute(&textBuf, vars); err != nil {
		return fmt.Errorf("render %s text: %w", kind, err)
	}

	if err := s.sender.Send(to, subject, htmlBuf.String(), textBuf.String()); err != nil {
		return err
	}
	return nil
}
