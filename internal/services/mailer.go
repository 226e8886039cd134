package services

import (
	"context"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"
)

type MailerOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseSSL   bool
}

// Mailer delivers workflow notifications over SMTP.
type Mailer struct {
	opts MailerOptions
}

func NewMailer(opts MailerOptions) *Mailer {
	if opts.From == "" {
		opts.From = opts.Username
	}
	return &Mailer{opts: opts}
}

// BuildMessage assembles an HTML message.
func (m *Mailer) BuildMessage(to, subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.opts.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.opts.From, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}

func (m *Mailer) Notify(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := m.BuildMessage(to, subject, htmlBody)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.opts.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.opts.Username),
		mail.WithPassword(m.opts.Password),
	}
	if m.opts.UseSSL {
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(m.opts.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	log.Printf("📧 Sending %q to %s\n", subject, to)

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("✅ Email %q sent to %s\n", subject, to)
	return nil
}

// LogNotifier only logs notifications. It is used when SMTP is not
// configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("📧 [dry-run] Sending email to %s with subject: %s\n", to, subject)
	return nil
}
