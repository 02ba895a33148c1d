package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/smtp"
	"strings"

	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/logging"
)

// Generate returns a numeric code of the given length.
func Generate(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// Sender delivers a login code to an email address.
type Sender interface {
	Send(ctx context.Context, email, code string) error
}

// LogSender writes codes to the log. The code itself is only logged when
// revealCode is set, which should never be the case in production.
type LogSender struct {
	revealCode bool
}

func NewLogSender(revealCode bool) *LogSender {
	return &LogSender{revealCode: revealCode}
}

func (s *LogSender) Send(ctx context.Context, email, code string) error {
	event := logging.FromContext(ctx).Info().Str("email", email)
	if s.revealCode {
		event = event.Str("otp", code)
	}
	event.Msg("login code issued")
	return nil
}

// SMTPSender emails codes through a plain SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.MailerConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: cfg.Host + ":" + cfg.Port,
		auth: auth,
		from: cfg.DefaultFrom,
		send: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(_ context.Context, email, code string) error {
	msg := "From: " + s.from + "\r\n" +
		"To: " + email + "\r\n" +
		"Subject: Seu código de acesso ConectaBem\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		"Seu código de acesso é " + code + ".\r\n"
	if err := s.send(s.addr, s.auth, s.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

// NewSender picks the delivery transport configured for the environment.
func NewSender(cfg *config.Config) Sender {
	if cfg.Mailer.Transport == "smtp" && cfg.Mailer.Host != "" {
		return NewSMTPSender(cfg.Mailer)
	}
	return NewLogSender(!cfg.IsProduction())
}
