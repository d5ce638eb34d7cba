// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/validate"
)

// # Identity Channels

// Channel is the medium through which an account is identified and reached.
type Channel int

const (
	ChannelMobileNumber Channel = iota
	ChannelEmail
)

// String returns the channel's wire name.
func (c Channel) String() string {
	if c == ChannelMobileNumber {
		return "mobileNumber"
	}
	return "email"
}

// label is the human-readable channel name used in client messages.
func (c Channel) label() string {
	if c == ChannelMobileNumber {
		return "Mobile number"
	}
	return "Email"
}

// Classify decides which channel a caller-supplied identity belongs to.
//
// Anything that is not an international mobile number is treated as an
// email address. Format validation of the email happens at the boundary.
func Classify(input string) Channel {
	if validate.IsMobileNumber(input) {
		return ChannelMobileNumber
	}
	return ChannelEmail
}

// Reset channel discriminators accepted by the reset-password endpoint.
const (
	ResetViaMobileNumber = "0"
	ResetViaEmail        = "1"
)

// ParseResetChannel maps the explicit reset discriminator to a channel.
func ParseResetChannel(discriminator string) (Channel, bool) {
	switch discriminator {
	case ResetViaMobileNumber:
		return ChannelMobileNumber, true
	case ResetViaEmail:
		return ChannelEmail, true
	default:
		return 0, false
	}
}

// # Lookup

// FindByIdentity resolves value on the given channel through users.
func FindByIdentity(context context.Context, users UserRepository, channel Channel, value string) (*User, error) {
	if channel == ChannelMobileNumber {
		return users.FindByMobileNumber(context, value)
	}
	return users.FindByEmail(context, value)
}

/*
CheckIdentityAvailable fails when value is already used on channel by an
account other than exceptUserID.

Parameters:
  - context: context.Context
  - users: UserRepository
  - channel: Channel
  - value: string (empty values are always available)
  - exceptUserID: string (the account being updated, or "" on create)

Returns:
  - error: apperr.IdentityConflict, or lookup failures
*/
func CheckIdentityAvailable(context context.Context, users UserRepository, channel Channel, value, exceptUserID string) error {
	if value == "" {
		return nil
	}

	existing, err := FindByIdentity(context, users, channel, value)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("auth_identity_lookup_failed: %w", err)
	}

	if existing.ID == exceptUserID {
		return nil
	}

	return IdentityConflictError(channel)
}

// IdentityConflictError is the client error for an identity already in use.
func IdentityConflictError(channel Channel) *apperr.AppError {
	return apperr.IdentityConflict(channel.label() + " is already used")
}
