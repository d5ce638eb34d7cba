// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for accounts.
//
// Lookups return an apperr NOT_FOUND error when no account matches. Writes
// that collide with another account's mobile number or email return
// apperr.IdentityConflict.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	// FindByMobileNumber returns the account owning the mobile number.
	FindByMobileNumber(context context.Context, mobileNumber string) (*User, error)

	// FindByEmail returns the account owning the email address.
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - user: *User (ID, Role and PasswordHash already set)

		Returns:
		  - error: apperr.IdentityConflict or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists the mutable profile fields and both verification flags.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.NotFound, apperr.IdentityConflict or persistence failures
	*/
	Update(context context.Context, user *User) error

	// UpdatePassword replaces only the account's password hash.
	UpdatePassword(context context.Context, id, passwordHash string) error

	// MarkMobileNumberVerified sets isMobileNumberVerified to true.
	MarkMobileNumberVerified(context context.Context, id string) error

	// MarkEmailVerified sets isEmailVerified to true.
	MarkEmailVerified(context context.Context, id string) error
}

// # Credential Data Access

// CredentialStore is the durable record of every issued non-access token.
//
// Absence, revocation and expiry are not told apart here. The [Verifier]
// re-checks freshness itself.
type CredentialStore interface {

	/*
		Issue inserts a credential whose value was produced by the [Issuer].

		Parameters:
		  - context: context.Context
		  - credential: *Credential (TokenHash, not the raw value)

		Returns:
		  - error: Persistence failures
	*/
	Issue(context context.Context, credential *Credential) error

	/*
		FindActive looks up a non-revoked credential by the exact
		(hash, type, owner) triple.

		Returns:
		  - *Credential: The stored record
		  - error: ErrCredentialNotFound or storage failures
	*/
	FindActive(context context.Context, tokenHash string, tokenType TokenType, userID string) (*Credential, error)

	// Purge deletes every credential of tokenType owned by userID. It is
	// idempotent.
	Purge(context context.Context, userID string, tokenType TokenType) error

	// Delete removes one specific credential. It returns ErrCredentialNotFound
	// when nothing was removed, so two concurrent consumers cannot both win.
	Delete(context context.Context, userID, tokenHash string, tokenType TokenType) error
}
