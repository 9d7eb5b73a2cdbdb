package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/rmagtibay/clinic-api/config"
)

type Service interface {
	// SendPasswordReset delivers the activation link for a provisioned
	// patient account.
	SendPasswordReset(ctx context.Context, to string, token string) error
	SendWelcome(ctx context.Context, to string, name string) error
	SendReceipt(ctx context.Context, to string, receiptNumber string, body string) error
}

type smtpService struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	resetURL string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
		resetURL: cfg.ResetURL,
	}
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to string, token string) error {
	link := fmt.Sprintf("%s?token=%s", s.resetURL, token)
	body := fmt.Sprintf(
		"<p>An account has been created for you.</p>"+
			"<p>Set your password to activate it: <a href=%q>%s</a></p>"+
			"<p>The link expires in 24 hours.</p>",
		link, link,
	)
	return s.send(to, "Activate your patient account", body)
}

func (s *smtpService) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your account is now active.</p>", name)
	return s.send(to, "Welcome", body)
}

func (s *smtpService) SendReceipt(ctx context.Context, to string, receiptNumber string, body string) error {
	return s.send(to, fmt.Sprintf("Receipt %s", receiptNumber), body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoopService discards all mail. Used in tests and when SMTP is not
// configured.
type NoopService struct{}

func (NoopService) SendPasswordReset(context.Context, string, string) error { return nil }
func (NoopService) SendWelcome(context.Context, string, string) error { return nil }
func (NoopService) SendReceipt(context.Context, string, string, string) error { return nil }
