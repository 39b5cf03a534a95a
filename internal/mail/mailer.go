package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message is one outgoing email, already rendered.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers rendered mail. Delivery failures never fail the
// operation that produced the mail.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	addr string // host:port
	host string
	user string
	pass string
	from string
}

func NewSMTPMailer(host, port, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		addr: host + ":" + port,
		host: host,
		user: user,
		pass: pass,
		from: from,
	}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	from := msg.From
	if from == "" {
		from = m.from
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(m.addr, auth, from, msg.To, []byte(b.String())); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

// LogMailer is a no-delivery Mailer used when SMTP is not configured.
type LogMailer struct {
	Logf func(format string, args ...any)
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if m.Logf != nil {
		m.Logf("mail (not delivered): to=%v subject=%q", msg.To, msg.Subject)
	}
	return nil
}
