// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kavenegar/kavenegar-go"
)

const smsRequestTimeout = 10 * time.Second

// KavenegarClient sends templated verification SMS through the Kavenegar
// "verify/lookup" API.
type KavenegarClient struct {
	api      *kavenegar.Kavenegar
	template string
}

// KavenegarOption customizes a [KavenegarClient].
type KavenegarOption func(*kavenegar.Kavenegar) error

// WithKavenegarBaseURL points the client at another host (used by tests).
func WithKavenegarBaseURL(baseURL string) KavenegarOption {
	return func(api *kavenegar.Kavenegar) error {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("sms_base_url_invalid: %w", err)
		}
		api.BaseURL = parsed
		return nil
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) KavenegarOption {
	return func(api *kavenegar.Kavenegar) error {
		api.BaseClient = httpClient
		return nil
	}
}

// NewKavenegarClient creates a client for the given API key and template.
func NewKavenegarClient(apiKey, template string, opts ...KavenegarOption) (*KavenegarClient, error) {
	api := kavenegar.New(apiKey)
	api.BaseClient = &http.Client{Timeout: smsRequestTimeout}

	for _, opt := range opts {
		if err := opt(api); err != nil {
			return nil, err
		}
	}

	return &KavenegarClient{api: api, template: template}, nil
}

// SendVerificationCode delivers code to receptor using the lookup template.
//
// The SDK call is not cancellable; ctx is checked before sending.
func (client *KavenegarClient) SendVerificationCode(ctx context.Context, receptor, code string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sms_request_cancelled: %w", err)
	}

	_, err := client.api.Verify.Lookup(receptor, client.template, code, &kavenegar.VerifyLookupParam{})
	if err == nil {
		return nil
	}

	var apiErr *kavenegar.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("sms_rejected: status %d: %s: %w", apiErr.Status, apiErr.Message, err)
	}
	return fmt.Errorf("sms_request_send: %w", err)
}
