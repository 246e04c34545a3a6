package notify

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"
)

// dialSender is what gomail.Dialer provides; tests swap it out.
type dialSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends order-confirmation mail over SMTP with a small fixed
// number of attempts and exponential backoff. An exhausted send is
// reported to the caller, which logs and drops it; a mail outage
// can never reach the order path.
type Mailer struct {
	sender   dialSender
	from     string
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Attempts int
	Backoff  time.Duration
}

func NewMailer(cfg Config, log *slog.Logger) *Mailer {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &Mailer{
		sender:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		attempts: attempts,
		backoff:  backoff,
		log:      log,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	var lastErr error
	wait := m.backoff
	for attempt := 1; attempt <= m.attempts; attempt++ {
		lastErr = m.sender.DialAndSend(msg)
		if lastErr == nil {
			m.log.Info("mail sent", "to", to, "attempt", attempt)
			return nil
		}
		m.log.Warn("mail attempt failed", "to", to, "attempt", attempt, "err", lastErr)
		if attempt < m.attempts {
			time.Sleep(wait)
			wait *= 2
		}
	}
	return fmt.Errorf("send mail to %s: %w", to, lastErr)
}
