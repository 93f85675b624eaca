package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"go-freelance-backend/config"
)

// SMTPSender delivers mail through the configured SMTP relay
type SMTPSender struct {
	dialer    *gomail.Dialer
	fromEmail string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		fromEmail: cfg.SMTPFromEmail,
	}
}

// IsConfigured reports whether SMTP credentials are present
func IsConfigured(cfg *config.Config) bool {
	return cfg.SMTPHost != "" && cfg.SMTPUsername != "" && cfg.SMTPPassword != ""
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.fromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them, for local development
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("mail")}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.Info("email not sent, SMTP not configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// ConfirmationSubject is the subject line of the account confirmation email
const ConfirmationSubject = "Vérifie ton adresse e-mail"

type confirmationData struct {
	Link  string
	UID   string
	Token string
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Confirmation</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <p>Bonjour,</p>
    <p>Merci pour ton inscription. Clique sur le lien ci-dessous pour activer ton compte :</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>Identifiant : {{.UID}}<br>Jeton : {{.Token}}</p>
    <p>Si tu n'es pas à l'origine de cette inscription, ignore ce message.</p>
</body>
</html>`))

// ConfirmationEmail renders the subject and body sent after registration
func ConfirmationEmail(frontendURL, uid, token string) (string, string, error) {
	data := confirmationData{
		Link:  fmt.Sprintf("%s/confirm/%s/%s", frontendURL, uid, token),
		UID:   uid,
		Token: token,
	}
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return ConfirmationSubject, body.String(), nil
}
