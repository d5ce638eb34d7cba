// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"time"
)

// # Token Types

// TokenType tells credentials apart so that one can never stand in for another.
type TokenType string

const (
	TokenAccess                       TokenType = "access"
	TokenRefresh                      TokenType = "refresh"
	TokenVerifyMobileNumber           TokenType = "verifyMobileNumber"
	TokenVerifyEmail                  TokenType = "verifyEmail"
	TokenResetPasswordViaMobileNumber TokenType = "resetPasswordViaMobileNumber"
	TokenResetPasswordViaEmail        TokenType = "resetPasswordViaEmail"
)

// IsValid reports whether t is a known token type.
func (t TokenType) IsValid() bool {
	switch t {
	case TokenAccess, TokenRefresh, TokenVerifyMobileNumber, TokenVerifyEmail,
		TokenResetPasswordViaMobileNumber, TokenResetPasswordViaEmail:
		return true
	default:
		return false
	}
}

// verificationType returns the verification token type for channel.
func verificationType(channel Channel) TokenType {
	if channel == ChannelMobileNumber {
		return TokenVerifyMobileNumber
	}
	return TokenVerifyEmail
}

// resetPasswordType returns the reset-password token type for channel.
func resetPasswordType(channel Channel) TokenType {
	if channel == ChannelMobileNumber {
		return TokenResetPasswordViaMobileNumber
	}
	return TokenResetPasswordViaEmail
}

// # Credential Values

// Value is the secret handed to the account holder.
//
// It is either a [SignedToken] or a [NumericCode]; the two take different
// verification paths.
type Value interface {
	String() string
	isCredentialValue()
}

// SignedToken is a compact JWS carrying its own type, owner and expiry.
type SignedToken string

func (v SignedToken) String() string { return string(v) }
func (SignedToken) isCredentialValue() {}

// NumericCode is a short code sent by SMS. It carries nothing but digits, so
// the owner must be supplied by the caller.
type NumericCode string

func (v NumericCode) String() string { return string(v) }
func (NumericCode) isCredentialValue() {}

// # Persisted Credential

// Credential is the stored record of an issued non-access token.
//
// Only the SHA-256 digest of the value is kept.
type Credential struct {
	ID        string    `json:"id"`
	TokenHash string    `json:"tokenHash"`
	UserID    string    `json:"userId"`
	Type      TokenType `json:"type"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActiveAt reports whether the credential may be used at now.
//
// The expiry instant itself is still valid.
func (credential *Credential) ActiveAt(now time.Time) bool {
	return !credential.Revoked && !now.After(credential.ExpiresAt)
}

// ErrCredentialNotFound is returned by a [CredentialStore] when no record
// matches.
var ErrCredentialNotFound = errors.New("auth: credential not found")
