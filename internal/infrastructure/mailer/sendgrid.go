// Package mailer delivers back-office notifications by email.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/constructora/backend/internal/domain/audit"
	"github.com/constructora/backend/internal/infrastructure/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// ErrDeliveryFailed is returned when SendGrid rejects a message
var ErrDeliveryFailed = errors.New("mail delivery failed")

// Sender is the part of the SendGrid client the mailer uses
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

var subjects = map[audit.NotificationType]string{
	audit.NotificationPayment:      "Nuevo abono registrado",
	audit.NotificationDisbursement: "Desembolso registrado",
	audit.NotificationVoid:         "Abono anulado",
	audit.NotificationClient:       "Novedad de cliente",
	audit.NotificationRenunciation: "Renuncia registrada",
	audit.NotificationAlert:        "Alerta de cartera",
}

const bodyHTML = `<p>%s</p>%s<p style="color:#888;font-size:12px">%s · %d</p>`

// SendGridMailer implements audit.Mailer
type SendGridMailer struct {
	sender     Sender
	from       *mail.Email
	recipients []*mail.Email
	sandbox    bool
	logger     *zap.Logger
}

// NewSendGridMailer builds a mailer from configuration. It returns nil when
// mail is disabled or nobody is subscribed.
func NewSendGridMailer(cfg config.MailerConfig, logger *zap.Logger) *SendGridMailer {
	if !cfg.Enabled || len(cfg.Recipients) == 0 {
		return nil
	}
	return NewSendGridMailerWithSender(sendgrid.NewSendClient(cfg.APIKey), cfg, logger)
}

// NewSendGridMailerWithSender builds a mailer around an existing sender
func NewSendGridMailerWithSender(sender Sender, cfg config.MailerConfig, logger *zap.Logger) *SendGridMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	to := make([]*mail.Email, 0, len(cfg.Recipients))
	for _, r := range cfg.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, mail.NewEmail("", r))
		}
	}
	return &SendGridMailer{
		sender:     sender,
		from:       mail.NewEmail(cfg.FromName, cfg.FromEmail),
		recipients: to,
		sandbox:    cfg.SandboxMode,
		logger:     logger.Named("mailer"),
	}
}

// SendNotification mails n to every configured recipient in one message.
func (m *SendGridMailer) SendNotification(ctx context.Context, n *audit.Notification) error {
	if len(m.recipients) == 0 {
		return nil
	}
	msg := m.build(n)
	resp, err := m.sender.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sendgrid status %d: %s", ErrDeliveryFailed, resp.StatusCode, resp.Body)
	}
	m.logger.Debug("Notification mailed",
		zap.String("notification_id", n.ID.String()),
		zap.Int("recipients", len(m.recipients)),
	)
	return nil
}

func (m *SendGridMailer) build(n *audit.Notification) *mail.SGMailV3 {
	subject, ok := subjects[n.Type]
	if !ok {
		subject = "Notificación"
	}
	subject = m.from.Name + " - " + subject

	plain := n.Message
	link := ""
	if n.Link != "" {
		plain += "\n\n" + n.Link
		link = fmt.Sprintf(`<p><a href="%s">Ver detalle</a></p>`, html.EscapeString(n.Link))
	}
	body := fmt.Sprintf(bodyHTML, html.EscapeString(n.Message), link, html.EscapeString(m.from.Name), time.Now().Year())

	msg := mail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.Subject = subject
	p := mail.NewPersonalization()
	p.AddTos(m.recipients...)
	msg.AddPersonalizations(p)
	msg.AddContent(mail.NewContent("text/plain", plain), mail.NewContent("text/html", body))

	if m.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	return msg
}
