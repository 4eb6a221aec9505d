package notification

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/wneessen/go-mail"

	"ms-transactions/internal/config"
	"ms-transactions/internal/models"
)

// Sender is the part of *mail.Client the mailer needs.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

var (
	acceptedTmpl = template.Must(template.New("accepted").Parse(
		`Hi {{.CustomerName}},

Your transaction {{.TransactionID}} for {{.EventName}} has been accepted.
See you at the event!
`))

	rejectedTmpl = template.Must(template.New("rejected").Parse(
		`Hi {{.CustomerName}},

Your transaction {{.TransactionID}} for {{.EventName}} has been rejected by the organizer.
{{if .Reason}}Reason: {{.Reason}}
{{end}}Any coupon you used has been returned to your account.
`))
)

// Mailer emails customers when the organizer accepts or rejects their transaction.
type Mailer struct {
	sender   Sender
	from     string
	fromName string
}

func NewMailer(sender Sender, from, fromName string) *Mailer {
	return &Mailer{sender: sender, from: from, fromName: fromName}
}

// NewSMTPClient builds the go-mail client from configuration.
func NewSMTPClient(cfg config.EmailConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	c, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not initialize smtp client: %w", err)
	}
	return c, nil
}

func (m *Mailer) Name() string { return "email" }

func (m *Mailer) Notify(ctx context.Context, evt models.TransactionStatusEvent) error {
	msg, err := m.Message(evt)
	if err != nil || msg == nil {
		return err
	}
	return m.sender.DialAndSendWithContext(ctx, msg)
}

// Message builds the email for evt. It returns nil for events that do not email.
func (m *Mailer) Message(evt models.TransactionStatusEvent) (*mail.Msg, error) {
	var (
		tmpl    *template.Template
		subject string
	)
	switch evt.Type {
	case TypeAccepted:
		tmpl, subject = acceptedTmpl, "Your ticket is confirmed"
	case TypeRejected:
		tmpl, subject = rejectedTmpl, "Your transaction was rejected"
	default:
		return nil, nil
	}
	if evt.CustomerEmail == "" {
		return nil, fmt.Errorf("no email address for customer %s", evt.CustomerID)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, evt); err != nil {
		return nil, fmt.Errorf("render %s email: %w", evt.Type, err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("failed to set From address: %w", err)
	}
	if err := msg.To(evt.CustomerEmail); err != nil {
		return nil, fmt.Errorf("failed to set To address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body.String())
	return msg, nil
}
