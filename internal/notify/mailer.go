// Package notify delivers certificate mails. Delivery is a collaborator
// concern; callers treat failures per recipient, never as batch aborts.
package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"net"
	"net/smtp"
	"strings"
)

type Message struct {
	To             string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SMTPMailer sends multipart mail over plain SMTP with optional AUTH.
type SMTPMailer struct {
	Host string
	Port string
	From string
	User string
	Pass string
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var b strings.Builder
	boundary := "eventsoft-cert-boundary"
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(m.Body)
	b.WriteString("\r\n")

	if len(m.Attachment) > 0 {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: application/octet-stream\r\n")
		fmt.Fprintf(&b, "Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", m.AttachmentName)
		enc := base64.StdEncoding.EncodeToString(m.Attachment)
		for len(enc) > 76 {
			b.WriteString(enc[:76])
			b.WriteString("\r\n")
			enc = enc[76:]
		}
		b.WriteString(enc)
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	addr := net.JoinHostPort(s.Host, s.Port)
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	return smtp.SendMail(addr, auth, s.From, []string{m.To}, []byte(b.String()))
}

// LogMailer is the default when SMTP is not configured. It records the
// would-be delivery and succeeds, so development setups can exercise
// the emission flow end to end.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Message) error {
	log.Printf("mail (dry run): to=%s subject=%q attachment=%s (%d bytes)",
		m.To, m.Subject, m.AttachmentName, len(m.Attachment))
	return nil
}
