// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the account identity and credential lifecycle.

It defines the core domain entities (User, Credential) and the flows that
create, verify, consume, and invalidate credentials across the two identity
channels (mobile number, email).

# Architecture

  - Identity: [Classify] tells a mobile number from an email address.
  - Storage: [UserRepository] and [CredentialStore] hide Postgres and Redis.
  - Tokens: [Issuer] mints credentials, [Verifier] checks them.
  - Flows: [Service] composes the above into register, verify, login,
    logout, refresh and password reset.

Nothing below [Handler] knows about HTTP.
*/
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/sec"
)

// # Domain Entities

// User represents a storefront account.
//
// MobileNumber and Email are empty when the channel is not set. At least
// one of them is set from creation onward.
type User struct {
	ID                     string       `json:"id"`
	MobileNumber           string       `json:"mobileNumber,omitempty"`
	Email                  string       `json:"email,omitempty"`
	PasswordHash           string       `json:"-"` // Explicitly omitted from JSON for security.
	Role                   sec.UserRole `json:"role"`
	IsMobileNumberVerified bool         `json:"isMobileNumberVerified"`
	IsEmailVerified        bool         `json:"isEmailVerified"`
	Firstname              string       `json:"firstname,omitempty"`
	Lastname               string       `json:"lastname,omitempty"`
	Avatar                 string       `json:"avatar,omitempty"`
	PhoneNumber            string       `json:"phoneNumber,omitempty"`
	Address                *Address     `json:"address,omitempty"`
	CreatedAt              time.Time    `json:"createdAt"`
	UpdatedAt              time.Time    `json:"updatedAt"`
}

// Address is the optional postal address of an account.
type Address struct {
	Country  string `json:"country,omitempty"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	Street   string `json:"street,omitempty"`
	ZipCode  string `json:"zipCode,omitempty"`
}

// Identity returns the account's value on the given channel.
func (user *User) Identity(channel Channel) string {
	if channel == ChannelMobileNumber {
		return user.MobileNumber
	}
	return user.Email
}

// IsVerifiedOn reports whether the given channel has been verified.
func (user *User) IsVerifiedOn(channel Channel) bool {
	if channel == ChannelMobileNumber {
		return user.IsMobileNumberVerified
	}
	return user.IsEmailVerified
}

// HashPassword hashes a new account password. Passwords bcrypt cannot take
// fail as VALIDATION_ERROR on the password field.
func HashPassword(password string) (string, error) {
	hash, err := sec.HashPassword(password)
	if errors.Is(err, sec.ErrPasswordTooLong) {
		message := fmt.Sprintf("Must be at most %d bytes long", sec.MaxPasswordBytes)
		return "", apperr.ValidationError(message, apperr.FieldError{Field: FieldPassword, Message: message}).WithCause(err)
	}
	return hash, err
}

// # Field Identifiers

// JSON field names used by validation errors and request payloads.
const (
	FieldMobileNumberOrEmail    = "mobileNumberOrEmail"
	FieldMobileNumber           = "mobileNumber"
	FieldEmail                  = "email"
	FieldPassword               = "password"
	FieldToken                  = "token"
	FieldRefreshToken           = "refreshToken"
	FieldRole                   = "role"
	FieldFirstname              = "firstname"
	FieldLastname               = "lastname"
	FieldAvatar                 = "avatar"
	FieldPhoneNumber            = "phoneNumber"
	FieldAddress                = "address"
	FieldIsMobileNumberVerified = "isMobileNumberVerified"
	FieldIsEmailVerified        = "isEmailVerified"
)
