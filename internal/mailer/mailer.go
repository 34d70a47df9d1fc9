// Package mailer delivers exam result emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/techops-academy/certifier/internal/i18n"
)

// Config holds the SMTP settings. An empty Host disables sending entirely;
// the submit pipeline then relies on the stored artifact alone.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	if cfg.From == "" {
		cfg.From = "TechOps Academy <academy@techops-example.com>"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}
}

// Enabled reports whether SMTP delivery is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// SendResult emails the certificate PDF to the trainee. Callers treat
// failures as non-fatal: the attempt is already stored.
func (m *Mailer) SendResult(ctx context.Context, toEmail, name string, passed bool, pdf []byte) error {
	if !m.Enabled() {
		slog.Info("smtp not configured, skipping result email", "to", toEmail)
		return nil
	}

	resultLabel := i18n.T(ctx, "ResultFailed")
	if passed {
		resultLabel = i18n.T(ctx, "ResultPassed")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(i18n.Td(ctx, "EmailSubject", map[string]any{"Result": resultLabel}))
	msg.SetBodyString(mail.TypeTextPlain, i18n.Td(ctx, "EmailBody", map[string]any{"Name": name}))

	filename := fmt.Sprintf("TechOps_Academy_Eredmeny_%s.pdf", strings.ReplaceAll(name, " ", "_"))
	if err := msg.AttachReader(filename, bytes.NewReader(pdf)); err != nil {
		return fmt.Errorf("attach certificate: %w", err)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send result email: %w", err)
	}
	slog.Info("sent result email", "to", toEmail, "result", resultLabel)
	return nil
}
