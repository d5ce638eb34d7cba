// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package authtest provides in-memory implementations of the auth storage
// and delivery contracts for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/users/auth"
)

// # Users

// Users is an in-memory [auth.UserRepository] enforcing identity uniqueness
// the way the partial unique indexes do.
type Users struct {
	mu    sync.Mutex
	byID  map[string]auth.User
	order []string
}

// NewUsers returns an empty repository.
func NewUsers() *Users {
	return &Users{byID: make(map[string]auth.User)}
}

func (users *Users) FindByID(_ context.Context, id string) (*auth.User, error) {
	users.mu.Lock()
	defer users.mu.Unlock()

	user, ok := users.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return &user, nil
}

func (users *Users) FindByMobileNumber(_ context.Context, mobileNumber string) (*auth.User, error) {
	return users.findBy(func(user auth.User) bool { return mobileNumber != "" && user.MobileNumber == mobileNumber })
}

func (users *Users) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return users.findBy(func(user auth.User) bool { return email != "" && user.Email == email })
}

func (users *Users) Create(_ context.Context, user *auth.User) error {
	users.mu.Lock()
	defer users.mu.Unlock()

	if err := users.conflict(user); err != nil {
		return err
	}

	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	users.byID[user.ID] = *user
	users.order = append(users.order, user.ID)
	return nil
}

func (users *Users) Update(_ context.Context, user *auth.User) error {
	users.mu.Lock()
	defer users.mu.Unlock()

	if _, ok := users.byID[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	if err := users.conflict(user); err != nil {
		return err
	}

	user.UpdatedAt = time.Now().UTC()
	users.byID[user.ID] = *user
	return nil
}

func (users *Users) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return users.mutate(id, func(user *auth.User) { user.PasswordHash = passwordHash })
}

func (users *Users) MarkMobileNumberVerified(_ context.Context, id string) error {
	return users.mutate(id, func(user *auth.User) { user.IsMobileNumberVerified = true })
}

func (users *Users) MarkEmailVerified(_ context.Context, id string) error {
	return users.mutate(id, func(user *auth.User) { user.IsEmailVerified = true })
}

// All returns every account in insertion order.
func (users *Users) All() []auth.User {
	users.mu.Lock()
	defer users.mu.Unlock()

	all := make([]auth.User, 0, len(users.order))
	for _, id := range users.order {
		all = append(all, users.byID[id])
	}
	return all
}

func (users *Users) findBy(match func(auth.User) bool) (*auth.User, error) {
	users.mu.Lock()
	defer users.mu.Unlock()

	for _, id := range users.order {
		if user := users.byID[id]; match(user) {
			return &user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (users *Users) mutate(id string, apply func(*auth.User)) error {
	users.mu.Lock()
	defer users.mu.Unlock()

	user, ok := users.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	apply(&user)
	user.UpdatedAt = time.Now().UTC()
	users.byID[id] = user
	return nil
}

// conflict must be called with mu held.
func (users *Users) conflict(candidate *auth.User) error {
	for id, user := range users.byID {
		if id == candidate.ID {
			continue
		}
		if candidate.MobileNumber != "" && user.MobileNumber == candidate.MobileNumber {
			return auth.IdentityConflictError(auth.ChannelMobileNumber)
		}
		if candidate.Email != "" && user.Email == candidate.Email {
			return auth.IdentityConflictError(auth.ChannelEmail)
		}
	}
	return nil
}

// # Credentials

// Credentials is an in-memory [auth.CredentialStore].
type Credentials struct {
	mu      sync.Mutex
	records []auth.Credential
}

// NewCredentials returns an empty store.
func NewCredentials() *Credentials {
	return &Credentials{}
}

func (store *Credentials) Issue(_ context.Context, credential *auth.Credential) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.records = append(store.records, *credential)
	return nil
}

func (store *Credentials) FindActive(_ context.Context, tokenHash string, tokenType auth.TokenType, userID string) (*auth.Credential, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, record := range store.records {
		if record.TokenHash == tokenHash && record.Type == tokenType && record.UserID == userID && !record.Revoked {
			found := record
			return &found, nil
		}
	}
	return nil, auth.ErrCredentialNotFound
}

func (store *Credentials) Purge(_ context.Context, userID string, tokenType auth.TokenType) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	kept := store.records[:0]
	for _, record := range store.records {
		if record.UserID != userID || record.Type != tokenType {
			kept = append(kept, record)
		}
	}
	store.records = kept
	return nil
}

func (store *Credentials) Delete(_ context.Context, userID, tokenHash string, tokenType auth.TokenType) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i, record := range store.records {
		if record.UserID == userID && record.TokenHash == tokenHash && record.Type == tokenType && !record.Revoked {
			store.records = append(store.records[:i], store.records[i+1:]...)
			return nil
		}
	}
	return auth.ErrCredentialNotFound
}

// Count returns how many records of tokenType userID holds.
func (store *Credentials) Count(userID string, tokenType auth.TokenType) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	count := 0
	for _, record := range store.records {
		if record.UserID == userID && record.Type == tokenType {
			count++
		}
	}
	return count
}

// # Delivery

// Message is one captured notification.
type Message struct {
	Kind      string
	Recipient string
	Value     string
}

// Message kinds recorded by [Notifier].
const (
	KindMobileVerification = "mobile_verification"
	KindEmailVerification  = "email_verification"
	KindResetPasswordEmail = "reset_password_email"
)

// Notifier captures every notification instead of delivering it.
//
// Set Err to make every send fail after capture.
type Notifier struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (notifier *Notifier) SendMobileVerification(_ context.Context, mobileNumber, code string) error {
	return notifier.capture(KindMobileVerification, mobileNumber, code)
}

func (notifier *Notifier) SendEmailVerification(_ context.Context, email, token string) error {
	return notifier.capture(KindEmailVerification, email, token)
}

func (notifier *Notifier) SendResetPasswordEmail(_ context.Context, email, token string) error {
	return notifier.capture(KindResetPasswordEmail, email, token)
}

// Last returns the newest captured message, or false when none exists.
func (notifier *Notifier) Last() (Message, bool) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	if len(notifier.messages) == 0 {
		return Message{}, false
	}
	return notifier.messages[len(notifier.messages)-1], true
}

// Messages returns every captured message.
func (notifier *Notifier) Messages() []Message {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	return append([]Message(nil), notifier.messages...)
}

func (notifier *Notifier) capture(kind, recipient, value string) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	notifier.messages = append(notifier.messages, Message{Kind: kind, Recipient: recipient, Value: value})
	return notifier.Err
}
