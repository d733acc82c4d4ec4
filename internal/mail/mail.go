// Package mail sends transactional emails (collaborator invitations).
package mail

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message or returns an error; callers decide whether a
// failed delivery is fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers through an authenticated SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	var a smtp.Auth
	if user != "" {
		a = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPSender{addr: net.JoinHostPort(host, strconv.Itoa(port)), auth: a, from: from, send: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("mail: header injection attempt")
	}
	envelopeFrom := s.from
	if i := strings.LastIndex(envelopeFrom, "<"); i >= 0 {
		envelopeFrom = strings.Trim(envelopeFrom[i:], "<>")
	}
	return s.send(s.addr, s.auth, envelopeFrom, []string{msg.To}, s.render(msg))
}

func (s *SMTPSender) render(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogSender only logs; used when no SMTP relay is configured.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Log.Info("email not sent (no SMTP relay configured)", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// InvitationMessage builds the collaborator invitation email.
func InvitationMessage(to, entreprise, siteURL string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s vous invite à rejoindre son espace client", entreprise),
		Body: fmt.Sprintf("Bonjour,\n\n%s vous a ajouté comme collaborateur sur son espace client.\n"+
			"Rendez-vous sur %s/espace-client/login pour y accéder.\n\nÀ bientôt.", entreprise, siteURL),
	}
}
