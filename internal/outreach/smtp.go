package outreach

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPProvider sends email over plain SMTP with AUTH PLAIN.
type SMTPProvider struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewSMTPProvider builds a provider from SMTP credentials. An empty from
// address falls back to the authenticating user.
func NewSMTPProvider(host string, port int, user, password, from string) *SMTPProvider {
	if from == "" {
		from = user
	}
	return &SMTPProvider{host: host, port: port, user: user, password: password, from: from}
}

func (p *SMTPProvider) From() string {
	return p.from
}

// SendEmail submits a message. SMTP has no provider-side message id, so a
// generated id is returned for the audit trail.
func (p *SMTPProvider) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	auth := smtp.PlainAuth("", p.user, p.password, p.host)

	var msg strings.Builder
	msg.WriteString("From: " + p.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(addr, auth, p.from, []string{to}, []byte(msg.String())); err != nil {
		return "", err
	}
	return "smtp-" + uuid.NewString(), nil
}

// Verify dials the server and negotiates auth without sending.
func (p *SMTPProvider) Verify(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: p.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if err := client.Auth(smtp.PlainAuth("", p.user, p.password, p.host)); err != nil {
		return fmt.Errorf("smtp auth rejected: %w", err)
	}
	return client.Quit()
}
