package mailservice

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-mail/mail/v2"
)

var ErrNoRecipient = errors.New("mail has no recipient")

// NewMailer returns an SMTP mailer that renders its bodies from tp.
func NewMailer(host string, port int, username, password, sender string, tp *Template) *Mail {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return &Mail{
		dialer: dialer,
		sender: sender,
		parser: tp,
	}
}

func (m *Mail) send(recipient string, data any, templateFile string) error {
	if recipient == "" {
		return ErrNoRecipient
	}

	subject, plainBody, htmlBody, err := m.parser.ParseTemplate(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	// the dialer keeps no connection between sends
	m.mu.Lock()
	defer m.mu.Unlock()

	err = m.dialer.DialAndSend(msg)
	if err != nil {
		return fmt.Errorf("could not send mail to %s: %w", recipient, err)
	}

	return nil
}
