package service

import (
	"fmt"

	mail "gopkg.in/mail.v2"

	"github.com/spec-kit/report-service/internal/config"
)

// ResolutionNotice is the rendered content of a resolution email.
type ResolutionNotice struct {
	RecipientEmail  string
	RecipientName   string
	ReportID        int64
	ProblemType     string
	Location        string
	ResolutionNotes string
	ResolvedBy      string
}

// Mailer dispatches resolution notices over an external transport.
type Mailer interface {
	SendResolutionNotice(notice ResolutionNotice) error
	IsEnabled() bool
}

// SMTPMailer sends mail via gomail over SMTP.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *mail.Dialer
}

// NewSMTPMailer constructs a mailer; the dialer is only created when SMTP is
// configured and enabled.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	var dialer *mail.Dialer
	if cfg.Enabled && cfg.Host != "" {
		dialer = mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return &SMTPMailer{cfg: cfg, dialer: dialer}
}

// IsEnabled reports whether the transport is configured.
func (m *SMTPMailer) IsEnabled() bool {
	return m.dialer != nil
}

// SendResolutionNotice composes a plain-text body with an HTML alternative
// and dispatches it. All transport failures surface as a plain error for the
// caller to downgrade; nothing here can roll back the status change that
// triggered the notice.
func (m *SMTPMailer) SendResolutionNotice(notice ResolutionNotice) error {
	if m.dialer == nil {
		return fmt.Errorf("mail transport not configured")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddress))
	msg.SetHeader("To", notice.RecipientEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Your report #%d has been resolved", notice.ReportID))
	msg.SetBody("text/plain", plainResolutionBody(notice))
	msg.AddAlternative("text/html", htmlResolutionBody(notice))

	return m.dialer.DialAndSend(msg)
}

func plainResolutionBody(n ResolutionNotice) string {
	return fmt.Sprintf(
		"Hello %s,\n\nYour report #%d (%s at %s) has been resolved.\n\nResolution notes: %s\n\nResolved by: %s\n",
		n.RecipientName, n.ReportID, n.ProblemType, n.Location, n.ResolutionNotes, n.ResolvedBy)
}

func htmlResolutionBody(n ResolutionNotice) string {
	return fmt.Sprintf(
		`<p>Hello %s,</p><p>Your report <strong>#%d</strong> (%s at %s) has been <strong>resolved</strong>.</p><p>Resolution notes: %s</p><p>Resolved by: %s</p>`,
		n.RecipientName, n.ReportID, n.ProblemType, n.Location, n.ResolutionNotes, n.ResolvedBy)
}
