package mail

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/env"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends HTML emails via SMTP
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
	send     SendFunc
}

// NewSMTPMailerFromEnv reads the SMTP_* settings.
func NewSMTPMailerFromEnv() *SMTPMailer {
	sender := env.GetEnv("SMTP_SENDER", "")
	if sender == "" {
		sender = "no-reply@localhost"
	}
	return &SMTPMailer{
		Host:     env.GetEnv("SMTP_HOST", ""),
		Port:     env.GetEnv("SMTP_PORT", "587"),
		Username: env.GetEnv("SMTP_USERNAME", ""),
		Password: env.GetEnv("SMTP_PASSWORD", ""),
		Sender:   sender,
		send:     smtp.SendMail,
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *SMTPMailer) Enabled() bool {
	return m != nil && m.Host != ""
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}

	var auth smtp.Auth
	if m.Username != "" && m.Password != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", m.Sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	send := m.send
	if send == nil {
		send = smtp.SendMail
	}
	err := send(addr, auth, m.Sender, []string{to}, msg)
	if err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
	} else {
		log.Infof("[Mail] email sent to %s via %s", to, addr)
	}
	return err
}

// ContactNotifier forwards new contact messages to the pastor.
type ContactNotifier struct {
	mailer *SMTPMailer
	to     string
}

func NewContactNotifier(mailer *SMTPMailer, to string) *ContactNotifier {
	return &ContactNotifier{mailer: mailer, to: to}
}

// NotifyContact is a no-op when SMTP or the recipient is not configured.
func (n *ContactNotifier) NotifyContact(msg *models.ContactMessage) error {
	if n == nil || !n.mailer.Enabled() || n.to == "" {
		return nil
	}
	return n.mailer.Send(n.to, "Nouveau message: "+msg.Subject, ContactBody(msg))
}

// ContactBody renders the notification body with all user input escaped.
func ContactBody(msg *models.ContactMessage) string {
	var b strings.Builder
	b.WriteString("<h2>Nouveau message de contact</h2>")
	fmt.Fprintf(&b, "<p><strong>Nom:</strong> %s</p>", html.EscapeString(msg.Name))
	fmt.Fprintf(&b, "<p><strong>E-mail:</strong> %s</p>", html.EscapeString(msg.Email))
	if msg.Phone != nil && *msg.Phone != "" {
		fmt.Fprintf(&b, "<p><strong>Téléphone:</strong> %s</p>", html.EscapeString(*msg.Phone))
	}
	fmt.Fprintf(&b, "<p><strong>Sujet:</strong> %s</p>", html.EscapeString(msg.Subject))
	fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>"))
	return b.String()
}
