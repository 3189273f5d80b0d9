package email

import (
	"context"

	"gopkg.in/gomail.v2"

	apperrors "github.com/shake819/remind-api/pkg/errors"
)

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	Subject  string `mapstructure:"subject"`
}

// Notifier delivers reminders to a fixed mailbox over SMTP.
type Notifier struct {
	dialer *gomail.Dialer
	cfg    Config
}

func New(cfg Config) *Notifier {
	if cfg.Subject == "" {
		cfg.Subject = "Reminder"
	}
	return &Notifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
	}
}

func (n *Notifier) Deliver(ctx context.Context, text string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", n.cfg.Subject)
	m.SetBody("text/plain", text)

	if err := n.dialer.DialAndSend(m); err != nil {
		return apperrors.DeliveryFailure(err)
	}
	return nil
}
