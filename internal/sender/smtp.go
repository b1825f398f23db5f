package sender

import (
	"context"

	"mail-service/config"
	"mail-service/internal/models"

	gopkgmail "gopkg.in/gomail.v2"
)

type SMTPSender struct {
	cfg config.SMTP
}

func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, e *models.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gopkgmail.NewMessage()

	from := e.FromEmail
	if from == "" {
		from = s.cfg.From
	}
	m.SetHeader("From", from)
	m.SetHeader("To", e.To...)
	if len(e.Cc) > 0 {
		m.SetHeader("Cc", e.Cc...)
	}
	if len(e.Bcc) > 0 {
		m.SetHeader("Bcc", e.Bcc...)
	}
	m.SetHeader("Subject", e.Subject)

	for k, v := range e.Headers {
		if sv, ok := v.(string); ok {
			m.SetHeader(k, sv)
		}
	}

	m.SetBody("text/plain", e.Message)
	if e.HTMLMessage != "" {
		m.AddAlternative("text/html", e.HTMLMessage)
	}

	for _, a := range e.Attachments {
		m.Attach(a.File, gopkgmail.Rename(a.Name))
	}

	d := gopkgmail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	d.SSL = s.cfg.SSL
	return d.DialAndSend(m)
}

func (s *SMTPSender) Close() error { return nil }
