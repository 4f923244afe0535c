package smtp

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/magabrotheeeer/astraweather/internal/config"
)

// ErrNoRecipient у письма нет адресата.
var ErrNoRecipient = errors.New("recipient is empty")

// Mailer отправляет HTML-письма от имени адреса From.
type Mailer struct {
	from   string
	dialer Dialer
}

// NewMailer создаёт Mailer поверх gomail.Dialer из настроек SMTP.
func NewMailer(cfg config.SMTP) *Mailer {
	return NewMailerWithDialer(cfg.From, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass))
}

// NewMailerWithDialer создаёт Mailer с заданным транспортом.
func NewMailerWithDialer(from string, dialer Dialer) *Mailer {
	return &Mailer{from: from, dialer: dialer}
}

// Send отправляет письмо to с темой subject и HTML-телом body.
func (m *Mailer) Send(to, subject, body string) error {
	const op = "smtp.Send"
	if to == "" {
		return fmt.Errorf("%s: %w", op, ErrNoRecipient)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
