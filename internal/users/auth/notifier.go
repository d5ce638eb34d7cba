// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// Notifier delivers credentials to the account holder.
// [notify.Dispatcher] implements it over SMS and email.
type Notifier interface {
	SendMobileVerification(context context.Context, mobileNumber, code string) error
	SendEmailVerification(context context.Context, email, token string) error
	SendResetPasswordEmail(context context.Context, email, token string) error
}

// FlowRecorder counts flow outcomes. [metrics.Collector] implements it.
type FlowRecorder interface {
	RecordAuthFlow(flow, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuthFlow(string, string) {}
