// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/dberr"
	"github.com/taibuivan/storefront/internal/platform/postgres"
	"github.com/taibuivan/storefront/internal/platform/sec"
)

// Unique index names on users.account, used to tell which identity collided.
const (
	ConstraintAccountMobileNumber = "account_mobile_number_key"
	ConstraintAccountEmail        = "account_email_key"
)

// UserColumns is the column list matching [ScanUser].
const UserColumns = `id, COALESCE(mobile_number, ''), COALESCE(email, ''), password_hash, role,
	is_mobile_number_verified, is_email_verified, firstname, lastname, avatar, phone_number,
	address, created_at, updated_at`

// RowScanner is satisfied by pgx.Row and pgx.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

/*
ScanUser hydrates a [User] from a row selected with [UserColumns].

Returns:
  - *User: Hydrated entity
  - error: The raw scan error (pgx.ErrNoRows included)
*/
func ScanUser(row RowScanner) (*User, error) {
	var (
		user    User
		role    string
		address []byte
	)

	err := row.Scan(
		&user.ID,
		&user.MobileNumber,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.IsMobileNumberVerified,
		&user.IsEmailVerified,
		&user.Firstname,
		&user.Lastname,
		&user.Avatar,
		&user.PhoneNumber,
		&address,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = sec.UserRole(role)
	if len(address) > 0 {
		user.Address = &Address{}
		if err := json.Unmarshal(address, user.Address); err != nil {
			return nil, fmt.Errorf("postgres_user_decode_address_failed: %w", err)
		}
	}

	return &user, nil
}

// encodeAddress returns the jsonb parameter for address, nil meaning SQL NULL.
func encodeAddress(address *Address) ([]byte, error) {
	if address == nil {
		return nil, nil
	}
	return json.Marshal(address)
}

// mapWriteError turns an identity unique violation into IdentityConflict.
func mapWriteError(err error, tag string) error {
	if constraint, ok := dberr.UniqueViolation(err); ok {
		switch constraint {
		case ConstraintAccountMobileNumber:
			return IdentityConflictError(ChannelMobileNumber).WithCause(err)
		case ConstraintAccountEmail:
			return IdentityConflictError(ChannelEmail).WithCause(err)
		default:
			return apperr.IdentityConflict("Account already exists").WithCause(err)
		}
	}
	return fmt.Errorf("%s: %w", tag, err)
}

// # User Repository

// PostgresUserRepository implements [UserRepository] on users.account.
type PostgresUserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db postgres.DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// DB exposes the query surface to repositories that extend this one.
func (repository *PostgresUserRepository) DB() postgres.DBTX {
	return repository.db
}

// FindByID retrieves an account by its primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, "id = $1", id)
}

// FindByMobileNumber retrieves the account owning mobileNumber.
func (repository *PostgresUserRepository) FindByMobileNumber(context context.Context, mobileNumber string) (*User, error) {
	return repository.findOne(context, "mobile_number = $1", mobileNumber)
}

// FindByEmail retrieves the account owning email.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, "email = $1", email)
}

func (repository *PostgresUserRepository) findOne(context context.Context, predicate string, arg any) (*User, error) {
	query := `SELECT ` + UserColumns + ` FROM users.account WHERE ` + predicate

	user, err := ScanUser(repository.db.QueryRow(context, query, arg))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_failed: %w", err)
	}

	return user, nil
}

/*
Create persists a new account into the users.account table.

Description: Empty identities are stored as NULL so the partial unique
indexes ignore them.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.IdentityConflict or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, mobile_number, email, password_hash, role,
			is_mobile_number_verified, is_email_verified,
			firstname, lastname, avatar, phone_number, address, created_at, updated_at
		) VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	address, err := encodeAddress(user.Address)
	if err != nil {
		return fmt.Errorf("postgres_user_encode_address_failed: %w", err)
	}

	_, err = repository.db.Exec(context, query,
		user.ID,
		user.MobileNumber,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.IsMobileNumberVerified,
		user.IsEmailVerified,
		user.Firstname,
		user.Lastname,
		user.Avatar,
		user.PhoneNumber,
		address,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "postgres_user_repo_create_failed")
	}

	return nil
}

// Update persists the profile fields, role and both verification flags.
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account SET
			mobile_number = NULLIF($2, ''),
			email = NULLIF($3, ''),
			role = $4,
			is_mobile_number_verified = $5,
			is_email_verified = $6,
			firstname = $7,
			lastname = $8,
			avatar = $9,
			phone_number = $10,
			address = $11,
			updated_at = $12
		WHERE id = $1`

	address, err := encodeAddress(user.Address)
	if err != nil {
		return fmt.Errorf("postgres_user_encode_address_failed: %w", err)
	}

	user.UpdatedAt = time.Now().UTC()
	tag, err := repository.db.Exec(context, query,
		user.ID,
		user.MobileNumber,
		user.Email,
		string(user.Role),
		user.IsMobileNumberVerified,
		user.IsEmailVerified,
		user.Firstname,
		user.Lastname,
		user.Avatar,
		user.PhoneNumber,
		address,
		user.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "postgres_user_repo_update_failed")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdatePassword replaces the password hash of the account.
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	const query = `UPDATE users.account SET password_hash = $2, updated_at = now() WHERE id = $1`
	return repository.exec(context, "postgres_user_repo_update_password_failed", query, id, passwordHash)
}

// MarkMobileNumberVerified flags the mobile number as verified.
func (repository *PostgresUserRepository) MarkMobileNumberVerified(context context.Context, id string) error {
	const query = `UPDATE users.account SET is_mobile_number_verified = TRUE, updated_at = now() WHERE id = $1`
	return repository.exec(context, "postgres_user_repo_mark_mobile_verified_failed", query, id)
}

// MarkEmailVerified flags the email as verified.
func (repository *PostgresUserRepository) MarkEmailVerified(context context.Context, id string) error {
	const query = `UPDATE users.account SET is_email_verified = TRUE, updated_at = now() WHERE id = $1`
	return repository.exec(context, "postgres_user_repo_mark_email_verified_failed", query, id)
}

func (repository *PostgresUserRepository) exec(context context.Context, tag, query string, args ...any) error {
	result, err := repository.db.Exec(context, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// # Credential Store

// PostgresCredentialStore implements [CredentialStore] on users.credential.
type PostgresCredentialStore struct {
	db postgres.DBTX
}

// NewCredentialStore creates a PostgreSQL-backed [CredentialStore].
func NewCredentialStore(db postgres.DBTX) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

/*
Issue inserts a credential record.

Parameters:
  - context: context.Context
  - credential: *Credential

Returns:
  - error: Execution errors
*/
func (store *PostgresCredentialStore) Issue(context context.Context, credential *Credential) error {
	const query = `
		INSERT INTO users.credential (id, user_id, token_type, token_hash, expires_at, is_revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := store.db.Exec(context, query,
		credential.ID,
		credential.UserID,
		string(credential.Type),
		credential.TokenHash,
		credential.ExpiresAt,
		credential.Revoked,
		credential.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_credential_issue_failed: %w", err)
	}

	return nil
}

// FindActive returns the non-revoked credential matching the exact triple.
func (store *PostgresCredentialStore) FindActive(context context.Context, tokenHash string, tokenType TokenType, userID string) (*Credential, error) {
	const query = `
		SELECT id, user_id, token_type, token_hash, expires_at, is_revoked, created_at
		FROM users.credential
		WHERE token_hash = $1 AND token_type = $2 AND user_id = $3 AND is_revoked = FALSE
		LIMIT 1`

	var (
		credential Credential
		storedType string
	)
	err := store.db.QueryRow(context, query, tokenHash, string(tokenType), userID).Scan(
		&credential.ID,
		&credential.UserID,
		&storedType,
		&credential.TokenHash,
		&credential.ExpiresAt,
		&credential.Revoked,
		&credential.CreatedAt,
	)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("postgres_credential_find_failed: %w", err)
	}

	credential.Type = TokenType(storedType)
	return &credential, nil
}

// Purge deletes every credential of tokenType owned by userID.
func (store *PostgresCredentialStore) Purge(context context.Context, userID string, tokenType TokenType) error {
	const query = `DELETE FROM users.credential WHERE user_id = $1 AND token_type = $2`

	if _, err := store.db.Exec(context, query, userID, string(tokenType)); err != nil {
		return fmt.Errorf("postgres_credential_purge_failed: %w", err)
	}

	return nil
}

// Delete removes one non-revoked credential.
func (store *PostgresCredentialStore) Delete(context context.Context, userID, tokenHash string, tokenType TokenType) error {
	const query = `
		DELETE FROM users.credential
		WHERE user_id = $1 AND token_hash = $2 AND token_type = $3 AND is_revoked = FALSE`

	tag, err := store.db.Exec(context, query, userID, tokenHash, string(tokenType))
	if err != nil {
		return fmt.Errorf("postgres_credential_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	return nil
}
