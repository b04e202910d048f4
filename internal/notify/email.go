package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

const smtpTimeout = 30 * time.Second

// SMTPEmailSender delivers plain-text mail over SMTP with mandatory
// STARTTLS, matching what most hosted SMTP relays require on port 587.
type SMTPEmailSender struct{}

func NewSMTPEmailSender() *SMTPEmailSender {
	return &SMTPEmailSender{}
}

var _ EmailSender = (*SMTPEmailSender)(nil)

// Send dials the configured server and delivers one message. The
// connection is not reused: notification volume is low and a fresh
// dial picks up runtime settings changes immediately.
func (s *SMTPEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(smtpTimeout),
	}
	if msg.Port > 0 {
		opts = append(opts, mail.WithPort(msg.Port))
	}
	if msg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(msg.Username),
			mail.WithPassword(msg.Password),
		)
	}

	client, err := mail.NewClient(msg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, m)
}
