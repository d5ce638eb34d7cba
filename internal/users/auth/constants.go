// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Token Lifetimes

// TokenPolicy holds the lifetime of each token type.
//
// It is built once at startup and passed by value, so it cannot change under
// a running flow.
type TokenPolicy struct {
	Access                       time.Duration
	Refresh                      time.Duration
	VerifyMobileNumber           time.Duration
	VerifyEmail                  time.Duration
	ResetPasswordViaMobileNumber time.Duration
	ResetPasswordViaEmail        time.Duration
}

// DefaultTokenPolicy returns the lifetimes used when nothing is configured.
func DefaultTokenPolicy() TokenPolicy {
	return TokenPolicy{
		Access:                       30 * time.Minute,
		Refresh:                      30 * 24 * time.Hour,
		VerifyMobileNumber:           10 * time.Minute,
		VerifyEmail:                  10 * time.Minute,
		ResetPasswordViaMobileNumber: 10 * time.Minute,
		ResetPasswordViaEmail:        10 * time.Minute,
	}
}

// TTL returns the lifetime configured for tokenType.
func (policy TokenPolicy) TTL(tokenType TokenType) time.Duration {
	switch tokenType {
	case TokenAccess:
		return policy.Access
	case TokenRefresh:
		return policy.Refresh
	case TokenVerifyMobileNumber:
		return policy.VerifyMobileNumber
	case TokenVerifyEmail:
		return policy.VerifyEmail
	case TokenResetPasswordViaMobileNumber:
		return policy.ResetPasswordViaMobileNumber
	case TokenResetPasswordViaEmail:
		return policy.ResetPasswordViaEmail
	default:
		return 0
	}
}

// # Flow Names

// Flow labels used for metrics and logs.
const (
	FlowRegister                   = "register"
	FlowSendVerification           = "send_verification"
	FlowVerifyMobileNumber         = "verify_mobile_number"
	FlowVerifyEmail                = "verify_email"
	FlowLogin                      = "login"
	FlowLogout                     = "logout"
	FlowRefresh                    = "refresh_tokens"
	FlowForgotPassword             = "forgot_password"
	FlowVerifyMobileNumberForReset = "verify_mobile_number_for_reset_password"
	FlowResetPassword              = "reset_password"
)

// redisRecordGrace keeps Redis records a little past their expiry so the
// verifier, not the key TTL, decides the boundary.
const redisRecordGrace = time.Minute
