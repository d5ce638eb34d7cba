// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/storefront/internal/platform/sec"
)

// ErrInvalidCredential is the single reason a presented credential is
// refused: bad signature, wrong type, unknown owner, missing record, revoked
// or expired. Flows turn it into apperr.AuthenticationFailed.
var ErrInvalidCredential = errors.New("auth: invalid credential")

// # Verifier

// Verifier checks presented credentials against the signer and the store.
//
// Both verification paths compare the expiry instant against the same
// injected clock.
type Verifier struct {
	signer      Signer
	credentials CredentialStore
	now         func() time.Time
}

// VerifierOption customizes a [Verifier].
type VerifierOption func(*Verifier)

// WithVerifierClock replaces the wall clock used for expiry checks.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(verifier *Verifier) { verifier.now = now }
}

// NewVerifier constructs a [Verifier].
func NewVerifier(signer Signer, credentials CredentialStore, opts ...VerifierOption) *Verifier {
	verifier := &Verifier{signer: signer, credentials: credentials, now: time.Now}
	for _, opt := range opts {
		opt(verifier)
	}
	return verifier
}

/*
VerifySigned resolves a signed token of expectedType to its stored record.

Description: The signature is checked first, then the type and expiry
carried in the claims, then the stored record and its own expiry.

Parameters:
  - context: context.Context
  - token: SignedToken
  - expectedType: TokenType

Returns:
  - *Credential: The matching active record
  - error: ErrInvalidCredential (wrapped) or storage failures
*/
func (verifier *Verifier) VerifySigned(context context.Context, token SignedToken, expectedType TokenType) (*Credential, error) {
	claims, err := verifier.parse(token, expectedType)
	if err != nil {
		return nil, err
	}

	return verifier.lookup(context, token, expectedType, claims.Subject)
}

/*
VerifyCode resolves a numeric code for userID to its stored record.

Description: Codes carry no owner or expiry, so the caller names the owner
and the stored expiry is the only one checked.

Parameters:
  - context: context.Context
  - code: NumericCode
  - userID: string
  - expectedType: TokenType

Returns:
  - *Credential: The matching active record
  - error: ErrInvalidCredential (wrapped) or storage failures
*/
func (verifier *Verifier) VerifyCode(context context.Context, code NumericCode, userID string, expectedType TokenType) (*Credential, error) {
	if !sec.IsSixDigitCode(string(code)) {
		return nil, fmt.Errorf("%w: malformed code", ErrInvalidCredential)
	}

	return verifier.lookup(context, code, expectedType, userID)
}

// VerifyAccessToken checks a stateless access token and returns its claims.
func (verifier *Verifier) VerifyAccessToken(token SignedToken) (*sec.AuthClaims, error) {
	claims, err := verifier.parse(token, TokenAccess)
	if err != nil {
		return nil, err
	}

	if !sec.UserRole(claims.Role).IsValid() {
		return nil, fmt.Errorf("%w: unknown role", ErrInvalidCredential)
	}

	return claims, nil
}

// # Internal helpers

func (verifier *Verifier) parse(token SignedToken, expectedType TokenType) (*sec.AuthClaims, error) {
	claims, err := verifier.signer.Parse(token.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if TokenType(claims.Type) != expectedType {
		return nil, fmt.Errorf("%w: type mismatch", ErrInvalidCredential)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: incomplete claims", ErrInvalidCredential)
	}

	if verifier.now().After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidCredential)
	}

	return claims, nil
}

func (verifier *Verifier) lookup(context context.Context, value Value, tokenType TokenType, userID string) (*Credential, error) {
	credential, err := verifier.credentials.FindActive(context, sec.HashToken(value.String()), tokenType, userID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, fmt.Errorf("%w: no active record", ErrInvalidCredential)
		}
		return nil, fmt.Errorf("auth_verifier_lookup_failed: %w", err)
	}

	if !credential.ActiveAt(verifier.now()) {
		return nil, fmt.Errorf("%w: expired or revoked", ErrInvalidCredential)
	}

	return credential, nil
}
