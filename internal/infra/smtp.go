package infra

import (
	"fmt"
	"net/smtp"

	"cajaledger/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending supervisor alerts. Sends go
// through a circuit breaker so a downed relay fast-fails instead of stalling
// the worker pool.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	cb       *Breaker
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       NewBreaker(BreakerOptions{}),
	}
}

// SendAlerta sends a plain-text discrepancy alert to the supervisor address.
func (m *Mailer) SendAlerta(to, subject, body string) error {
	return m.cb.Call(func() error {
		e := email.NewEmail()
		e.From = m.user
		e.To = []string{to}
		e.Subject = subject
		e.Text = []byte(body)

		auth := smtp.PlainAuth("", m.user, m.password, m.host)
		return e.Send(m.addr, auth)
	})
}
