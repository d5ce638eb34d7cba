// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/internal/users/auth"
	"github.com/taibuivan/storefront/pkg/pagination"
	"github.com/taibuivan/storefront/pkg/pointer"
	"github.com/taibuivan/storefront/pkg/uuid"
)

// # Service Layer

// Service orchestrates profile edits and account administration.
type Service struct {
	accountRepository Repository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(accountRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private profile of an account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated account
  - error: NotFound or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, wrap(err, "account_service_get_profile_failed")
	}
	return user, nil
}

/*
UpdateProfile applies a partial set of changes to the caller's own account.

Description: A changed mobile number or email must not belong to another
account, and its verified flag is cleared.

Parameters:
  - context: context.Context
  - userID: string
  - input: ProfileInput

Returns:
  - *auth.User: The updated account
  - error: IdentityConflict, NotFound or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input ProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, wrap(err, "account_service_update_lookup_failed")
	}

	if err := service.applyProfile(context, user, input); err != nil {
		return nil, err
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, wrap(err, "account_service_update_failed")
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

// # Administration

/*
CreateUser creates an account on behalf of staff.

Description: The identity rules match registration. The account starts
unverified on every channel.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *auth.User: Created account
  - error: IdentityConflict or storage failures
*/
func (service *Service) CreateUser(context context.Context, input CreateInput) (*auth.User, error) {
	channel := auth.Classify(input.MobileNumberOrEmail)
	if err := auth.CheckIdentityAvailable(context, service.accountRepository, channel, input.MobileNumberOrEmail, ""); err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	role := input.Role
	if role == "" {
		role = sec.RoleUser
	}

	user := &auth.User{
		ID:           uuid.New(),
		PasswordHash: hashedPassword,
		Role:         role,
		Firstname:    input.Firstname,
		Lastname:     input.Lastname,
	}
	if channel == auth.ChannelMobileNumber {
		user.MobileNumber = input.MobileNumberOrEmail
	} else {
		user.Email = input.MobileNumberOrEmail
	}

	if err := service.accountRepository.Create(context, user); err != nil {
		return nil, wrap(err, "account_service_create_failed")
	}

	service.logger.Info("user_created_by_admin",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

/*
ListUsers returns one page of accounts and its pagination metadata.

Parameters:
  - context: context.Context
  - filter: ListFilter

Returns:
  - []*auth.User: The requested page
  - pagination.Meta: Page counts
  - error: Storage failures
*/
func (service *Service) ListUsers(context context.Context, filter ListFilter) ([]*auth.User, pagination.Meta, error) {
	users, total, err := service.accountRepository.List(context, filter)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_list_failed: %w", err)
	}

	return users, pagination.NewMeta(filter.Params, total), nil
}

// GetUser retrieves any account by id.
func (service *Service) GetUser(context context.Context, userID string) (*auth.User, error) {
	return service.GetProfile(context, userID)
}

/*
UpdateUser applies staff edits to any account.

Description: Explicit verified flags are applied after identity changes, so
staff can replace a mobile number and mark it verified in one request.

Parameters:
  - context: context.Context
  - userID: string
  - input: AdminUpdateInput

Returns:
  - *auth.User: The updated account
  - error: IdentityConflict, NotFound or storage failures
*/
func (service *Service) UpdateUser(context context.Context, userID string, input AdminUpdateInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, wrap(err, "account_service_update_lookup_failed")
	}

	if err := service.applyProfile(context, user, input.ProfileInput); err != nil {
		return nil, err
	}

	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsMobileNumberVerified != nil {
		user.IsMobileNumberVerified = *input.IsMobileNumberVerified
	}
	if input.IsEmailVerified != nil {
		user.IsEmailVerified = *input.IsEmailVerified
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, wrap(err, "account_service_update_failed")
	}

	service.logger.Info("user_updated_by_admin", slog.String("user_id", userID))

	return user, nil
}

// # Helpers

// applyProfile copies input onto user, enforcing identity uniqueness.
func (service *Service) applyProfile(context context.Context, user *auth.User, input ProfileInput) error {
	if pointer.Changed(user.MobileNumber, input.MobileNumber) {
		if err := auth.CheckIdentityAvailable(context, service.accountRepository, auth.ChannelMobileNumber, *input.MobileNumber, user.ID); err != nil {
			return err
		}
		user.MobileNumber = *input.MobileNumber
		user.IsMobileNumberVerified = false
	}

	if pointer.Changed(user.Email, input.Email) {
		if err := auth.CheckIdentityAvailable(context, service.accountRepository, auth.ChannelEmail, *input.Email, user.ID); err != nil {
			return err
		}
		user.Email = *input.Email
		user.IsEmailVerified = false
	}

	user.Firstname = pointer.Fallback(input.Firstname, user.Firstname)
	user.Lastname = pointer.Fallback(input.Lastname, user.Lastname)
	user.Avatar = pointer.Fallback(input.Avatar, user.Avatar)
	user.PhoneNumber = pointer.Fallback(input.PhoneNumber, user.PhoneNumber)
	if input.Address != nil {
		user.Address = input.Address
	}

	return nil
}

// wrap passes client errors through and tags everything else.
func wrap(err error, tag string) error {
	if apperr.IsAppError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", tag, err)
}
