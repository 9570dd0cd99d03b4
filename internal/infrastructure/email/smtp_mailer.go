// Package email: envío de correo por SMTP (gomail) y un mailer nulo para entornos sin SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/invoice-manager/internal/application/billing"
)

// Config servidor SMTP.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender abstrae el transporte para poder probar el armado del mensaje.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer implementa billing.Mailer.
type SMTPMailer struct {
	from   string
	sender Sender
}

var _ billing.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer construye el mailer con un gomail.Dialer.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("email: SMTP_HOST y SMTP_FROM son obligatorios")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return NewSMTPMailerWithSender(cfg.From, gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)), nil
}

// NewSMTPMailerWithSender construye el mailer con un transporte propio.
func NewSMTPMailerWithSender(from string, sender Sender) *SMTPMailer {
	return &SMTPMailer{from: from, sender: sender}
}

// Send arma el mensaje en texto plano con adjuntos y lo envía.
func (m *SMTPMailer) Send(ctx context.Context, msg billing.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := BuildMessage(m.from, msg)
	if err := m.sender.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// BuildMessage convierte billing.EmailMessage en un gomail.Message.
func BuildMessage(from string, msg billing.EmailMessage) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	for _, a := range msg.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		gm.Attach(a.Filename, settings...)
	}
	return gm
}

// LogMailer registra el correo en el log en lugar de enviarlo (SMTP no configurado).
type LogMailer struct {
	log zerolog.Logger
}

var _ billing.Mailer = (*LogMailer)(nil)

// NewLogMailer construye el mailer nulo.
func NewLogMailer(log zerolog.Logger) *LogMailer { return &LogMailer{log: log} }

// Send no envía nada; deja constancia del destinatario y adjuntos.
func (m *LogMailer) Send(_ context.Context, msg billing.EmailMessage) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	m.log.Warn().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Strs("attachments", names).
		Msg("SMTP no configurado: correo no enviado")
	return nil
}
