// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/metrics"
	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/pkg/uuid"
)

// # Service

// Service implements the authentication flows.
//
// # Failure semantics
//
// Every credential check failure leaves a flow as apperr.AuthenticationFailed.
// The collapse happens here and nowhere below, so the verifier and the stores
// keep their precise errors for logs. Each flow mutates the account before it
// purges credentials, so a failed write never burns a still-needed token.
type Service struct {
	users       UserRepository
	credentials CredentialStore
	issuer      *Issuer
	verifier    *Verifier
	notifier    Notifier
	recorder    FlowRecorder
	logger      *slog.Logger
}

// ServiceOption customizes a [Service].
type ServiceOption func(*Service)

// WithFlowRecorder records every flow outcome on recorder.
func WithFlowRecorder(recorder FlowRecorder) ServiceOption {
	return func(service *Service) { service.recorder = recorder }
}

// NewService constructs a new [Service] with its collaborators.
func NewService(
	users UserRepository,
	credentials CredentialStore,
	issuer *Issuer,
	verifier *Verifier,
	notifier Notifier,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	service := &Service{
		users:       users,
		credentials: credentials,
		issuer:      issuer,
		verifier:    verifier,
		notifier:    notifier,
		recorder:    noopRecorder{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	MobileNumberOrEmail string
	Password            string
}

/*
Register creates an unverified account on the channel the identity belongs to.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: IdentityConflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (user *User, err error) {
	defer service.observe(FlowRegister, &err)

	channel := Classify(input.MobileNumberOrEmail)
	if err := CheckIdentityAvailable(context, service.users, channel, input.MobileNumberOrEmail, ""); err != nil {
		return nil, err
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user = &User{
		ID:           uuid.New(),
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
	}
	if channel == ChannelMobileNumber {
		user.MobileNumber = input.MobileNumberOrEmail
	} else {
		user.Email = input.MobileNumberOrEmail
	}

	// The storage uniqueness constraint still answers IdentityConflict when a
	// concurrent registration wins the race after the check above.
	if err := service.users.Create(context, user); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Verification Flows

/*
SendVerification issues and delivers a verification credential on the channel
of the given identity.

Description: Earlier unconsumed credentials stay valid until one of them is
used. Delivery failures are logged and do not fail the flow.

Parameters:
  - context: context.Context
  - mobileNumberOrEmail: string

Returns:
  - err: NotFound, BadRequest (already verified) or internal failures
*/
func (service *Service) SendVerification(context context.Context, mobileNumberOrEmail string) (err error) {
	defer service.observe(FlowSendVerification, &err)

	channel := Classify(mobileNumberOrEmail)
	user, err := service.findUser(context, channel, mobileNumberOrEmail)
	if err != nil {
		return err
	}

	if user.IsVerifiedOn(channel) {
		return apperr.BadRequest(channel.label() + " is already verified")
	}

	issued, err := service.issuer.IssueVerification(context, user, channel)
	if err != nil {
		return fmt.Errorf("auth_service_send_verification_failed: %w", err)
	}

	if channel == ChannelMobileNumber {
		service.deliver(context, "sms_verification", service.notifier.SendMobileVerification(context, user.MobileNumber, issued.Value.String()))
	} else {
		service.deliver(context, "email_verification", service.notifier.SendEmailVerification(context, user.Email, issued.Value.String()))
	}

	return nil
}

/*
VerifyMobileNumber consumes a six-digit code and marks the mobile number verified.

Parameters:
  - context: context.Context
  - mobileNumber: string
  - code: string

Returns:
  - err: AuthenticationFailed or internal failures
*/
func (service *Service) VerifyMobileNumber(context context.Context, mobileNumber, code string) (err error) {
	defer service.observe(FlowVerifyMobileNumber, &err)

	_, err = service.consumeMobileCode(context, mobileNumber, code)
	return err
}

/*
VerifyEmail consumes an email verification token and marks the email verified.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: AuthenticationFailed or internal failures
*/
func (service *Service) VerifyEmail(context context.Context, token string) (err error) {
	defer service.observe(FlowVerifyEmail, &err)

	credential, err := service.verifier.VerifySigned(context, SignedToken(token), TokenVerifyEmail)
	if err != nil {
		return service.deny(err)
	}

	user, err := service.users.FindByID(context, credential.UserID)
	if err != nil {
		return service.deny(err)
	}

	if err := service.users.MarkEmailVerified(context, user.ID); err != nil {
		return fmt.Errorf("auth_service_mark_email_verified_failed: %w", err)
	}

	if err := service.credentials.Purge(context, user.ID, TokenVerifyEmail); err != nil {
		return fmt.Errorf("auth_service_purge_failed: %w", err)
	}

	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	MobileNumberOrEmail string
	Password            string
}

// LoginResult is the account and the freshly issued token pair.
type LoginResult struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

/*
Login checks the password and issues an access and refresh token pair.

Description: An unknown identity still costs one bcrypt comparison so both
failures take the same time. The password is checked before the
verification flag, so only the owner learns the account is unverified.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Account and tokens
  - err: AuthenticationFailed, ChannelNotVerified or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (result *LoginResult, err error) {
	defer service.observe(FlowLogin, &err)

	channel := Classify(input.MobileNumberOrEmail)
	user, err := FindByIdentity(context, service.users, channel, input.MobileNumberOrEmail)
	if err != nil {
		if apperr.IsNotFound(err) {
			sec.BurnPasswordCheck(input.Password)
			return nil, apperr.AuthenticationFailed()
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.AuthenticationFailed()
	}

	if !user.IsVerifiedOn(channel) {
		return nil, apperr.ChannelNotVerified(channel.label() + " is not verified")
	}

	tokens, err := service.issuer.IssuePair(context, user)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_failed: %w", err)
	}

	return &LoginResult{User: user, Tokens: tokens}, nil
}

/*
Logout removes the presented refresh token.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: NotFound (unknown, revoked or invalid token) or internal failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) (err error) {
	defer service.observe(FlowLogout, &err)

	credential, err := service.verifier.VerifySigned(context, SignedToken(refreshToken), TokenRefresh)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			return apperr.NotFound("Refresh token")
		}
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	if err := service.credentials.Delete(context, credential.UserID, credential.TokenHash, TokenRefresh); err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return apperr.NotFound("Refresh token")
		}
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

/*
RefreshTokens rotates a refresh token into a brand-new token pair.

Description: The old record is deleted before the new pair is issued; a
concurrent second use of the same token loses the delete and is refused.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: New access and refresh tokens
  - err: AuthenticationFailed or internal failures
*/
func (service *Service) RefreshTokens(context context.Context, refreshToken string) (tokens *TokenPair, err error) {
	defer service.observe(FlowRefresh, &err)

	credential, err := service.verifier.VerifySigned(context, SignedToken(refreshToken), TokenRefresh)
	if err != nil {
		return nil, service.deny(err)
	}

	user, err := service.users.FindByID(context, credential.UserID)
	if err != nil {
		return nil, service.deny(err)
	}

	if err := service.credentials.Delete(context, user.ID, credential.TokenHash, TokenRefresh); err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, apperr.AuthenticationFailed()
		}
		return nil, fmt.Errorf("auth_service_refresh_delete_failed: %w", err)
	}

	tokens, err = service.issuer.IssuePair(context, user)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_failed: %w", err)
	}

	return tokens, nil
}

// # Password Recovery

/*
ForgotPassword starts a password reset on the channel of the given identity.

Description: The mobile channel receives a six-digit code by SMS, to be
exchanged through [Service.VerifyMobileNumberForResetPassword]. The email
channel receives a reset link directly.

Parameters:
  - context: context.Context
  - mobileNumberOrEmail: string

Returns:
  - err: NotFound or internal failures
*/
func (service *Service) ForgotPassword(context context.Context, mobileNumberOrEmail string) (err error) {
	defer service.observe(FlowForgotPassword, &err)

	channel := Classify(mobileNumberOrEmail)
	user, err := service.findUser(context, channel, mobileNumberOrEmail)
	if err != nil {
		return err
	}

	if channel == ChannelMobileNumber {
		issued, err := service.issuer.IssueVerification(context, user, ChannelMobileNumber)
		if err != nil {
			return fmt.Errorf("auth_service_forgot_password_failed: %w", err)
		}
		service.deliver(context, "sms_reset_password", service.notifier.SendMobileVerification(context, user.MobileNumber, issued.Value.String()))
		return nil
	}

	issued, err := service.issuer.IssueResetPassword(context, user, ChannelEmail)
	if err != nil {
		return fmt.Errorf("auth_service_forgot_password_failed: %w", err)
	}
	service.deliver(context, "email_reset_password", service.notifier.SendResetPasswordEmail(context, user.Email, issued.Value.String()))

	return nil
}

/*
VerifyMobileNumberForResetPassword exchanges a six-digit code for a reset token.

Description: The code is consumed exactly as in [Service.VerifyMobileNumber];
the reset token is returned to the caller instead of being delivered.

Parameters:
  - context: context.Context
  - mobileNumber: string
  - code: string

Returns:
  - string: resetPasswordViaMobileNumber token
  - err: AuthenticationFailed or internal failures
*/
func (service *Service) VerifyMobileNumberForResetPassword(context context.Context, mobileNumber, code string) (resetToken string, err error) {
	defer service.observe(FlowVerifyMobileNumberForReset, &err)

	user, err := service.consumeMobileCode(context, mobileNumber, code)
	if err != nil {
		return "", err
	}

	issued, err := service.issuer.IssueResetPassword(context, user, ChannelMobileNumber)
	if err != nil {
		return "", fmt.Errorf("auth_service_issue_reset_failed: %w", err)
	}

	return issued.Value.String(), nil
}

// ResetPasswordInput carries the reset token, the explicit channel and the
// new password.
type ResetPasswordInput struct {
	Token    string
	Channel  Channel
	Password string
}

/*
ResetPassword replaces the password of the reset token's owner.

Description: The token type follows the explicit channel, never the token
itself. Every outstanding reset token of that type is purged afterwards.

Parameters:
  - context: context.Context
  - input: ResetPasswordInput

Returns:
  - err: AuthenticationFailed or internal failures
*/
func (service *Service) ResetPassword(context context.Context, input ResetPasswordInput) (err error) {
	defer service.observe(FlowResetPassword, &err)

	tokenType := resetPasswordType(input.Channel)
	credential, err := service.verifier.VerifySigned(context, SignedToken(input.Token), tokenType)
	if err != nil {
		return service.deny(err)
	}

	user, err := service.users.FindByID(context, credential.UserID)
	if err != nil {
		return service.deny(err)
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	if err := service.credentials.Purge(context, user.ID, tokenType); err != nil {
		return fmt.Errorf("auth_service_purge_failed: %w", err)
	}

	return nil
}

// # Access Tokens

// VerifyAccessToken resolves a bearer token for the authentication middleware.
func (service *Service) VerifyAccessToken(_ context.Context, token string) (*sec.AuthClaims, error) {
	claims, err := service.verifier.VerifyAccessToken(SignedToken(token))
	if err != nil {
		return nil, apperr.AuthenticationFailed().WithCause(err)
	}
	return claims, nil
}

// # Internal helpers

// consumeMobileCode verifies a code for mobileNumber, marks the number
// verified and purges every outstanding code of the account.
func (service *Service) consumeMobileCode(context context.Context, mobileNumber, code string) (*User, error) {
	user, err := service.users.FindByMobileNumber(context, mobileNumber)
	if err != nil {
		return nil, service.deny(err)
	}

	if _, err := service.verifier.VerifyCode(context, NumericCode(code), user.ID, TokenVerifyMobileNumber); err != nil {
		return nil, service.deny(err)
	}

	if err := service.users.MarkMobileNumberVerified(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_mark_mobile_verified_failed: %w", err)
	}
	user.IsMobileNumberVerified = true

	if err := service.credentials.Purge(context, user.ID, TokenVerifyMobileNumber); err != nil {
		return nil, fmt.Errorf("auth_service_purge_failed: %w", err)
	}

	return user, nil
}

// findUser resolves an identity, answering NotFound when nobody owns it.
func (service *Service) findUser(context context.Context, channel Channel, value string) (*User, error) {
	user, err := FindByIdentity(context, service.users, channel, value)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("auth_service_user_lookup_failed: %w", err)
	}
	return user, nil
}

// deny collapses credential and owner lookup failures into the uniform
// authentication failure. Storage outages pass through as internal errors.
func (service *Service) deny(err error) error {
	if errors.Is(err, ErrInvalidCredential) || apperr.IsNotFound(err) {
		return apperr.AuthenticationFailed().WithCause(err)
	}
	return fmt.Errorf("auth_service_verify_failed: %w", err)
}

// deliver logs a failed notification without failing the flow.
func (service *Service) deliver(context context.Context, kind string, err error) {
	if err == nil {
		return
	}
	service.logger.WarnContext(context, "notification_delivery_failed",
		slog.String("kind", kind),
		slog.Any("error", err),
	)
}

// observe records the outcome of flow from the error it returns.
func (service *Service) observe(flow string, errp *error) {
	outcome := metrics.OutcomeSuccess
	if err := *errp; err != nil {
		outcome = metrics.OutcomeError
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus < http.StatusInternalServerError {
			outcome = metrics.OutcomeDenied
		}
	}
	service.recorder.RecordAuthFlow(flow, outcome)
}
