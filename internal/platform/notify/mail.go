// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends plain-text email over SMTP.
type SMTPMailer struct {
	config SMTPConfig
}

// NewSMTPMailer creates a mailer; connections are opened per message.
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// ComposeMessage builds the plain-text message sent by [SMTPMailer.SendEmail].
func ComposeMessage(from, to, subject, text string) (*mail.Msg, error) {
	message := mail.NewMsg()
	if err := message.From(from); err != nil {
		return nil, fmt.Errorf("mail_from_invalid: %w", err)
	}
	if err := message.To(to); err != nil {
		return nil, fmt.Errorf("mail_to_invalid: %w", err)
	}
	message.Subject(subject)
	message.SetBodyString(mail.TypeTextPlain, text)
	return message, nil
}

// SendEmail delivers one message.
func (mailer *SMTPMailer) SendEmail(ctx context.Context, to, subject, text string) error {
	message, err := ComposeMessage(mailer.config.From, to, subject, text)
	if err != nil {
		return err
	}

	options := []mail.Option{
		mail.WithPort(mailer.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if mailer.config.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(mailer.config.Username),
			mail.WithPassword(mailer.config.Password),
		)
	}

	client, err := mail.NewClient(mailer.config.Host, options...)
	if err != nil {
		return fmt.Errorf("mail_client_init: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("mail_send: %w", err)
	}

	return nil
}
