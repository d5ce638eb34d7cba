// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/storefront/internal/platform/request"
	"github.com/taibuivan/storefront/internal/platform/respond"
	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// Payloads are validated here; a request that fails validation never reaches
// [Service].
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// The given middlewares (typically the credential rate limiter) wrap every
// route.
//
// # Endpoints
//   - POST /register
//   - POST /send-verification
//   - POST /verify-mobile-number
//   - POST /verify-email?token=
//   - POST /login
//   - POST /logout
//   - POST /refresh-tokens
//   - POST /forgot-password
//   - POST /verify-mobile-number-for-reset-password
//   - POST /reset-password?token=
func (handler *Handler) Routes(middlewares ...func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(middlewares...)

	router.Post("/register", handler.register)
	router.Post("/send-verification", handler.sendVerification)
	router.Post("/verify-mobile-number", handler.verifyMobileNumber)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/refresh-tokens", handler.refreshTokens)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/verify-mobile-number-for-reset-password", handler.verifyMobileNumberForResetPassword)
	router.Post("/reset-password", handler.resetPassword)

	return router
}

// # Request Payloads

type credentialsRequest struct {
	MobileNumberOrEmail string `json:"mobileNumberOrEmail"`
	Password            string `json:"password"`
}

type identityRequest struct {
	MobileNumberOrEmail string `json:"mobileNumberOrEmail"`
}

type mobileCodeRequest struct {
	MobileNumber string `json:"mobileNumber"`
	Token        string `json:"token"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type resetPasswordRequest struct {
	MobileNumberOrEmail string `json:"mobileNumberOrEmail"`
	Password            string `json:"password"`
}

type resetPasswordTokenResponse struct {
	ResetPasswordToken string `json:"resetPasswordToken"`
}

// # Validation

func (input credentialsRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldMobileNumberOrEmail, input.MobileNumberOrEmail).
		MobileNumberOrEmail(FieldMobileNumberOrEmail, input.MobileNumberOrEmail).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)
	return validator.Err()
}

func (input identityRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldMobileNumberOrEmail, input.MobileNumberOrEmail).
		MobileNumberOrEmail(FieldMobileNumberOrEmail, input.MobileNumberOrEmail)
	return validator.Err()
}

func (input mobileCodeRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldMobileNumber, input.MobileNumber).
		MobileNumber(FieldMobileNumber, input.MobileNumber).
		Required(FieldToken, input.Token).
		NumericCode(FieldToken, input.Token, sec.SixDigitCodeLength)
	return validator.Err()
}

func (input refreshTokenRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, input.RefreshToken).
		SignedToken(FieldRefreshToken, input.RefreshToken)
	return validator.Err()
}

func (input resetPasswordRequest) validate(token string) error {
	validator := &validate.Validator{}
	validator.Required(FieldToken, token).
		Required(FieldMobileNumberOrEmail, input.MobileNumberOrEmail).
		OneOf(FieldMobileNumberOrEmail, input.MobileNumberOrEmail, ResetViaMobileNumber, ResetViaEmail).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)
	return validator.Err()
}

// # Handlers

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Request:
  - Body: credentialsRequest (mobileNumberOrEmail, password)

Response:
  - 201: User: Created account
  - 400: VALIDATION_ERROR or IDENTITY_CONFLICT
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		MobileNumberOrEmail: input.MobileNumberOrEmail,
		Password:            input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
SendVerification delivers a verification code (SMS) or link (email).

POST /api/v1/auth/send-verification

Response:
  - 204: Sent
  - 400: Already verified
  - 404: No account for the identity
*/
func (handler *Handler) sendVerification(writer http.ResponseWriter, request *http.Request) {
	var input identityRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.SendVerification(request.Context(), input.MobileNumberOrEmail); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
VerifyMobileNumber consumes a six-digit code.

POST /api/v1/auth/verify-mobile-number

Response:
  - 204: Verified
  - 401: Invalid, expired or already used code
*/
func (handler *Handler) verifyMobileNumber(writer http.ResponseWriter, request *http.Request) {
	var input mobileCodeRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.VerifyMobileNumber(request.Context(), input.MobileNumber, input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
VerifyEmail consumes the token from an email verification link.

POST /api/v1/auth/verify-email?token=

Response:
  - 204: Verified
  - 400: Missing token
  - 401: Invalid token
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.Query(request, FieldToken)

	validator := &validate.Validator{}
	if err := validator.Required(FieldToken, token).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Login authenticates an account.

POST /api/v1/auth/login

Response:
  - 200: LoginResult: {user, tokens:{access, refresh}}
  - 401: Bad credentials or unverified channel
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		MobileNumberOrEmail: input.MobileNumberOrEmail,
		Password:            input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
Logout removes a refresh token.

POST /api/v1/auth/logout

Response:
  - 204: Logged out
  - 404: Unknown or revoked token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshTokenRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
RefreshTokens rotates a refresh token.

POST /api/v1/auth/refresh-tokens

Response:
  - 200: TokenPair
  - 401: Invalid, expired or already rotated token
*/
func (handler *Handler) refreshTokens(writer http.ResponseWriter, request *http.Request) {
	var input refreshTokenRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tokens, err := handler.authService.RefreshTokens(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tokens)
}

/*
ForgotPassword starts a password reset.

POST /api/v1/auth/forgot-password

Response:
  - 204: Code or link sent
  - 404: No account for the identity
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input identityRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.MobileNumberOrEmail); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
VerifyMobileNumberForResetPassword exchanges an SMS code for a reset token.

POST /api/v1/auth/verify-mobile-number-for-reset-password

Response:
  - 200: {resetPasswordToken}
  - 401: Invalid code
*/
func (handler *Handler) verifyMobileNumberForResetPassword(writer http.ResponseWriter, request *http.Request) {
	var input mobileCodeRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.VerifyMobileNumberForResetPassword(request.Context(), input.MobileNumber, input.Token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, resetPasswordTokenResponse{ResetPasswordToken: token})
}

/*
ResetPassword sets a new password.

POST /api/v1/auth/reset-password?token=

Request:
  - Body: {mobileNumberOrEmail: "0" (mobile) | "1" (email), password}

Response:
  - 204: Password replaced
  - 401: Invalid token or unknown account
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token := requestutil.Query(request, FieldToken)
	if err := input.validate(token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	channel, _ := ParseResetChannel(input.MobileNumberOrEmail)
	err := handler.authService.ResetPassword(request.Context(), ResetPasswordInput{
		Token:    token,
		Channel:  channel,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
