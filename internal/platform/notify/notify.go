// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify delivers verification codes and links to account owners.

Transports:

  - SMS: [KavenegarClient] (verify/lookup template).
  - Email: [SMTPMailer] (go-mail).
  - Log: [LogTransport] writes messages to the structured log instead of sending them.

[Dispatcher] composes the message texts and picks the transport per channel.
*/
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// SMSSender delivers a numeric verification code to a mobile number.
type SMSSender interface {
	SendVerificationCode(ctx context.Context, receptor, code string) error
}

// Mailer delivers one plain-text email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, text string) error
}

// Dispatcher turns auth events into outbound messages.
type Dispatcher struct {
	sms     SMSSender
	mailer  Mailer
	baseURL string
}

// NewDispatcher creates a Dispatcher. baseURL prefixes the email links.
func NewDispatcher(sms SMSSender, mailer Mailer, baseURL string) *Dispatcher {
	return &Dispatcher{
		sms:     sms,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SendMobileVerification sends the six-digit code by SMS.
func (dispatcher *Dispatcher) SendMobileVerification(ctx context.Context, mobileNumber, code string) error {
	return dispatcher.sms.SendVerificationCode(ctx, mobileNumber, code)
}

// SendEmailVerification emails the email-verification link.
func (dispatcher *Dispatcher) SendEmailVerification(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", dispatcher.baseURL, url.QueryEscape(token))
	text := "Dear user,\n" +
		"To verify your email, click on this link: " + link + "\n" +
		"If you did not create an account, then ignore this email."
	return dispatcher.mailer.SendEmail(ctx, email, "Email Verification", text)
}

// SendResetPasswordEmail emails the password-reset link.
func (dispatcher *Dispatcher) SendResetPasswordEmail(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/auth/reset-password?token=%s&mobileNumberOrEmail=1", dispatcher.baseURL, url.QueryEscape(token))
	text := "Dear user,\n" +
		"To reset your password, click on this link: " + link + "\n" +
		"If you did not request any password resets, then ignore this email."
	return dispatcher.mailer.SendEmail(ctx, email, "Reset password", text)
}

// LogTransport satisfies [SMSSender] and [Mailer] by logging at info level.
// It is meant for local development, where the code must be readable.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a LogTransport.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// SendVerificationCode implements [SMSSender].
func (transport *LogTransport) SendVerificationCode(ctx context.Context, receptor, code string) error {
	transport.logger.InfoContext(ctx, "notification_sms_logged",
		slog.String("receptor", receptor),
		slog.String("code", code),
	)
	return nil
}

// SendEmail implements [Mailer].
func (transport *LogTransport) SendEmail(ctx context.Context, to, subject, text string) error {
	transport.logger.InfoContext(ctx, "notification_email_logged",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", text),
	)
	return nil
}
