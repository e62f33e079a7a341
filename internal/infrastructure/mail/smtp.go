// Package mail delivers OTP and bill emails over SMTP. It satisfies
// both auth.Mailer and bill.Mailer so one transport serves the whole
// application.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"apotheca/pkg/logger"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	config Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer.
func NewSMTPMailer(config Config) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		send:   smtp.SendMail,
	}
}

func (m *SMTPMailer) addr() string {
	return fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
}

func (m *SMTPMailer) auth() smtp.Auth {
	if m.config.Username == "" {
		return nil
	}
	return smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
}

// Send delivers a plain-text message.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := &bytes.Buffer{}
	fmt.Fprintf(msg, "From: %s\r\n", m.config.From)
	fmt.Fprintf(msg, "To: %s\r\n", to)
	fmt.Fprintf(msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := m.send(m.addr(), m.auth(), m.config.From, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	logger.FromContext(ctx).Debugw("mail sent", "to", to, "subject", subject)
	return nil
}

// SendWithAttachment delivers a message with one binary attachment.
func (m *SMTPMailer) SendWithAttachment(ctx context.Context, to, subject, body string, attachment []byte, filename string) error {
	msg := &bytes.Buffer{}
	writer := multipart.NewWriter(msg)

	fmt.Fprintf(msg, "From: %s\r\n", m.config.From)
	fmt.Fprintf(msg, "To: %s\r\n", to)
	fmt.Fprintf(msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(msg, "Content-Type: multipart/mixed; boundary=%s\r\n", writer.Boundary())
	msg.WriteString("\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return fmt.Errorf("create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return fmt.Errorf("write text part: %w", err)
	}

	attHeader := textproto.MIMEHeader{}
	attHeader.Set("Content-Type", "application/pdf")
	attHeader.Set("Content-Transfer-Encoding", "base64")
	attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attPart, err := writer.CreatePart(attHeader)
	if err != nil {
		return fmt.Errorf("create attachment part: %w", err)
	}

	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(attachment)))
	base64.StdEncoding.Encode(encoded, attachment)
	if _, err := attPart.Write(encoded); err != nil {
		return fmt.Errorf("write attachment: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	if err := m.send(m.addr(), m.auth(), m.config.From, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	logger.FromContext(ctx).Debugw("mail with attachment sent", "to", to, "subject", subject, "filename", filename)
	return nil
}
