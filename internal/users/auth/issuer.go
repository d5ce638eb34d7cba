// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/pkg/uuid"
)

// # Contracts & Types

// Signer signs and parses compact JWTs. [sec.TokenService] implements it.
type Signer interface {
	Sign(claims sec.AuthClaims) (string, error)
	Parse(token string) (*sec.AuthClaims, error)
}

// IssuedToken is a freshly minted credential value and its absolute expiry.
type IssuedToken struct {
	Value     Value
	ExpiresAt time.Time
}

// MarshalJSON renders the token as {"token": ..., "expires": ...}.
func (token IssuedToken) MarshalJSON() ([]byte, error) {
	var value string
	if token.Value != nil {
		value = token.Value.String()
	}

	return json.Marshal(struct {
		Token   string    `json:"token"`
		Expires time.Time `json:"expires"`
	}{Token: value, Expires: token.ExpiresAt})
}

// TokenPair is the access and refresh tokens handed out on login and refresh.
type TokenPair struct {
	Access  IssuedToken `json:"access"`
	Refresh IssuedToken `json:"refresh"`
}

// # Issuer

// Issuer mints credentials of every type and persists the non-access ones.
type Issuer struct {
	signer      Signer
	credentials CredentialStore
	policy      TokenPolicy
	now         func() time.Time
	newCode     func() (string, error)
}

// IssuerOption customizes an [Issuer].
type IssuerOption func(*Issuer)

// WithIssuerClock replaces the wall clock used for issued-at and expiry.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(issuer *Issuer) { issuer.now = now }
}

// WithCodeGenerator replaces the six-digit code source.
func WithCodeGenerator(generate func() (string, error)) IssuerOption {
	return func(issuer *Issuer) { issuer.newCode = generate }
}

// NewIssuer constructs an [Issuer] with the given lifetimes.
func NewIssuer(signer Signer, credentials CredentialStore, policy TokenPolicy, opts ...IssuerOption) *Issuer {
	issuer := &Issuer{
		signer:      signer,
		credentials: credentials,
		policy:      policy,
		now:         time.Now,
		newCode:     sec.GenerateSixDigitCode,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer
}

// # Issuance

// IssueAccess signs a stateless access token carrying the account's role.
// Access tokens are never persisted.
func (issuer *Issuer) IssueAccess(user *User) (IssuedToken, error) {
	value, expiresAt, err := issuer.sign(user, TokenAccess)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// IssueRefresh signs and persists a refresh token.
func (issuer *Issuer) IssueRefresh(context context.Context, user *User) (IssuedToken, error) {
	return issuer.issueSigned(context, user, TokenRefresh)
}

/*
IssuePair mints the access and refresh tokens returned on login and refresh.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - *TokenPair: Both tokens with their expiry instants
  - error: Signing or persistence failures
*/
func (issuer *Issuer) IssuePair(context context.Context, user *User) (*TokenPair, error) {
	access, err := issuer.IssueAccess(user)
	if err != nil {
		return nil, err
	}

	refresh, err := issuer.IssueRefresh(context, user)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

/*
IssueVerification mints the credential that proves control of channel.

Description: The mobile channel gets a six-digit [NumericCode]; the email
channel gets a [SignedToken] meant for a link. Both are persisted.

Parameters:
  - context: context.Context
  - user: *User
  - channel: Channel

Returns:
  - IssuedToken: The raw value to deliver and its expiry
  - error: Generation or persistence failures
*/
func (issuer *Issuer) IssueVerification(context context.Context, user *User, channel Channel) (IssuedToken, error) {
	if channel == ChannelEmail {
		return issuer.issueSigned(context, user, TokenVerifyEmail)
	}

	code, err := issuer.newCode()
	if err != nil {
		return IssuedToken{}, fmt.Errorf("auth_issuer_generate_code_failed: %w", err)
	}

	issuedAt := issuer.issuedAt()
	expiresAt := issuedAt.Add(issuer.policy.TTL(TokenVerifyMobileNumber))

	if err := issuer.persist(context, user.ID, NumericCode(code), TokenVerifyMobileNumber, issuedAt, expiresAt); err != nil {
		return IssuedToken{}, err
	}

	return IssuedToken{Value: NumericCode(code), ExpiresAt: expiresAt}, nil
}

// IssueResetPassword signs and persists the reset token for channel.
func (issuer *Issuer) IssueResetPassword(context context.Context, user *User, channel Channel) (IssuedToken, error) {
	return issuer.issueSigned(context, user, resetPasswordType(channel))
}

// # Internal helpers

// issuedAt returns the current instant truncated to the JWT "iat" precision,
// so the stored expiry and the encoded "exp" are the same instant.
func (issuer *Issuer) issuedAt() time.Time {
	return issuer.now().Truncate(time.Second)
}

func (issuer *Issuer) issueSigned(context context.Context, user *User, tokenType TokenType) (IssuedToken, error) {
	value, expiresAt, err := issuer.sign(user, tokenType)
	if err != nil {
		return IssuedToken{}, err
	}

	issuedAt := expiresAt.Add(-issuer.policy.TTL(tokenType))
	if err := issuer.persist(context, user.ID, value, tokenType, issuedAt, expiresAt); err != nil {
		return IssuedToken{}, err
	}

	return IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

func (issuer *Issuer) sign(user *User, tokenType TokenType) (SignedToken, time.Time, error) {
	issuedAt := issuer.issuedAt()
	expiresAt := issuedAt.Add(issuer.policy.TTL(tokenType))

	claims := sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New(),
		},
		UserID: user.ID,
		Type:   string(tokenType),
	}

	// Only access tokens are used for role gating.
	if tokenType == TokenAccess {
		claims.Role = string(user.Role)
	}

	value, err := issuer.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth_issuer_sign_failed: %w", err)
	}

	return SignedToken(value), expiresAt, nil
}

func (issuer *Issuer) persist(context context.Context, userID string, value Value, tokenType TokenType, issuedAt, expiresAt time.Time) error {
	credential := &Credential{
		ID:        uuid.New(),
		TokenHash: sec.HashToken(value.String()),
		UserID:    userID,
		Type:      tokenType,
		ExpiresAt: expiresAt,
		Revoked:   false,
		CreatedAt: issuedAt,
	}

	if err := issuer.credentials.Issue(context, credential); err != nil {
		return fmt.Errorf("auth_issuer_persist_failed: %w", err)
	}

	return nil
}
