// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/middleware"
	requestutil "github.com/taibuivan/storefront/internal/platform/request"
	"github.com/taibuivan/storefront/internal/platform/respond"
	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/internal/platform/validate"
	"github.com/taibuivan/storefront/internal/users/auth"
	"github.com/taibuivan/storefront/pkg/pagination"
)

// URL parameter naming the target account on admin routes.
const paramUserID = "userId"

// Profile field limits.
const (
	maxNameLength   = 50
	maxAvatarLength = 2048
)

// Handler implements the HTTP layer for profiles and account administration.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// SelfRoutes returns the /users routes. Only the user right may call them, so
// admins get 403 here.
//
// # Endpoints
//   - GET   /me
//   - PATCH /me
func (handler *Handler) SelfRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRight(sec.RightUser))

	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)

	return router
}

// AdminRoutes returns the /admin/users routes.
//
// # Endpoints
//   - POST  /            (manageUser)
//   - GET   /            (manageUser)
//   - GET   /{userId}    (self or manageUser)
//   - PATCH /{userId}    (self or manageUser)
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRight(sec.RightManageUser))
		router.Post("/", handler.createUser)
		router.Get("/", handler.listUsers)
	})

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireSelfOrRight(paramUserID, sec.RightManageUser))
		router.Get("/{"+paramUserID+"}", handler.getUser)
		router.Patch("/{"+paramUserID+"}", handler.updateUser)
	})

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	MobileNumber *string       `json:"mobileNumber"`
	Email        *string       `json:"email"`
	Firstname    *string       `json:"firstname"`
	Lastname     *string       `json:"lastname"`
	Avatar       *string       `json:"avatar"`
	PhoneNumber  *string       `json:"phoneNumber"`
	Address      *auth.Address `json:"address"`
}

type updateUserRequest struct {
	updateProfileRequest
	Role                   *string `json:"role"`
	IsMobileNumberVerified *bool   `json:"isMobileNumberVerified"`
	IsEmailVerified        *bool   `json:"isEmailVerified"`
}

type createUserRequest struct {
	MobileNumberOrEmail string `json:"mobileNumberOrEmail"`
	Password            string `json:"password"`
	Role                string `json:"role"`
	Firstname           string `json:"firstname"`
	Lastname            string `json:"lastname"`
}

// # Validation

func (input updateProfileRequest) validateInto(validator *validate.Validator) {
	if input.MobileNumber != nil {
		validator.MobileNumber(auth.FieldMobileNumber, *input.MobileNumber)
	}
	if input.Email != nil {
		validator.Email(auth.FieldEmail, *input.Email)
	}
	if input.Firstname != nil {
		validator.MaxLen(auth.FieldFirstname, *input.Firstname, maxNameLength)
	}
	if input.Lastname != nil {
		validator.MaxLen(auth.FieldLastname, *input.Lastname, maxNameLength)
	}
	if input.Avatar != nil {
		validator.MaxLen(auth.FieldAvatar, *input.Avatar, maxAvatarLength)
	}
	if input.PhoneNumber != nil && *input.PhoneNumber != "" {
		validator.PhoneNumber(auth.FieldPhoneNumber, *input.PhoneNumber)
	}
}

func (input updateProfileRequest) validate() error {
	validator := &validate.Validator{}
	input.validateInto(validator)
	return validator.Err()
}

func (input updateProfileRequest) toInput() ProfileInput {
	return ProfileInput{
		MobileNumber: input.MobileNumber,
		Email:        input.Email,
		Firstname:    input.Firstname,
		Lastname:     input.Lastname,
		Avatar:       input.Avatar,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
	}
}

func (input updateUserRequest) validate() error {
	validator := &validate.Validator{}
	input.updateProfileRequest.validateInto(validator)
	if input.Role != nil {
		validator.Custom(auth.FieldRole, !sec.UserRole(*input.Role).IsValid(), "Must be one of: user, admin")
	}
	return validator.Err()
}

// touchesPrivilegedFields reports whether the payload sets staff-only fields.
func (input updateUserRequest) touchesPrivilegedFields() bool {
	return input.Role != nil || input.IsMobileNumberVerified != nil || input.IsEmailVerified != nil
}

func (input createUserRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(auth.FieldMobileNumberOrEmail, input.MobileNumberOrEmail).
		MobileNumberOrEmail(auth.FieldMobileNumberOrEmail, input.MobileNumberOrEmail).
		Required(auth.FieldPassword, input.Password).
		Password(auth.FieldPassword, input.Password).
		MaxLen(auth.FieldFirstname, input.Firstname, maxNameLength).
		MaxLen(auth.FieldLastname, input.Lastname, maxNameLength)
	if input.Role != "" {
		validator.Custom(auth.FieldRole, !sec.UserRole(input.Role).IsValid(), "Must be one of: user, admin")
	}
	return validator.Err()
}

// parseListFilter reads the listing filters from the query string.
func parseListFilter(request *http.Request) (ListFilter, error) {
	query := request.URL.Query()
	validator := &validate.Validator{}

	filter := ListFilter{
		MobileNumber: query.Get(auth.FieldMobileNumber),
		Email:        query.Get(auth.FieldEmail),
		Firstname:    query.Get(auth.FieldFirstname),
		Lastname:     query.Get(auth.FieldLastname),
		PhoneNumber:  query.Get(auth.FieldPhoneNumber),
		Role:         sec.UserRole(query.Get(auth.FieldRole)),
		Sort:         pagination.ParseSort(query.Get("sortBy"), SortableFields),
		Params:       pagination.FromRequest(request),
	}

	if filter.Role != "" {
		validator.Custom(auth.FieldRole, !filter.Role.IsValid(), "Must be one of: user, admin")
	}

	parseFlag := func(field string) *bool {
		raw := query.Get(field)
		if raw == "" {
			return nil
		}
		value, err := strconv.ParseBool(raw)
		validator.Custom(field, err != nil, "Must be true or false")
		return &value
	}
	filter.IsMobileNumberVerified = parseFlag(auth.FieldIsMobileNumberVerified)
	filter.IsEmailVerified = parseFlag(auth.FieldIsEmailVerified)

	return filter, validator.Err()
}

// # Self Profile Endpoints

/*
GET /api/v1/users/me.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: User: Fully hydrated user profile
  - 401: UNAUTHORIZED: Authentication required
  - 403: FORBIDDEN: Caller lacks the user right
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/v1/users/me.

Description: Applies partial updates to the authenticated user's profile.

Request:
  - body: updateProfileRequest (Partial JSON, unknown fields rejected)

Response:
  - 200: User: The updated profile
  - 400: VALIDATION_ERROR or IDENTITY_CONFLICT
  - 401: UNAUTHORIZED: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, input.toInput())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Administration Endpoints

/*
POST /api/v1/admin/users.

Response:
  - 201: User: Created account
  - 400: VALIDATION_ERROR or IDENTITY_CONFLICT
  - 403: FORBIDDEN: Caller lacks manageUser
*/
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input createUserRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.CreateUser(request.Context(), CreateInput{
		MobileNumberOrEmail: input.MobileNumberOrEmail,
		Password:            input.Password,
		Role:                sec.UserRole(input.Role),
		Firstname:           input.Firstname,
		Lastname:            input.Lastname,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GET /api/v1/admin/users.

Request:
  - query: mobileNumber, email, firstname, lastname, phoneNumber, role,
    isMobileNumberVerified, isEmailVerified, sortBy, page, limit

Response:
  - 200: []User with pagination meta (the caller is never listed)
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter, err := parseListFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	filter.ExcludeID = callerID

	users, meta, err := handler.accountService.ListUsers(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

/*
GET /api/v1/admin/users/{userId}.

Response:
  - 200: User
  - 403: FORBIDDEN: Neither self nor manageUser
  - 404: NOT_FOUND
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.accountService.GetUser(request.Context(), requestutil.Param(request, paramUserID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/v1/admin/users/{userId}.

Description: Account holders reaching this route for their own id may edit
profile fields only; role and verified flags need manageUser.

Response:
  - 200: User: The updated account
  - 400: VALIDATION_ERROR or IDENTITY_CONFLICT
  - 403: FORBIDDEN
  - 404: NOT_FOUND
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	var input updateUserRequest
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims := requestutil.Claims(request)
	if input.touchesPrivilegedFields() && !sec.UserRole(claims.Role).Can(sec.RightManageUser) {
		respond.Error(writer, request, apperr.Forbidden("Forbidden"))
		return
	}

	var role *sec.UserRole
	if input.Role != nil {
		value := sec.UserRole(*input.Role)
		role = &value
	}

	user, err := handler.accountService.UpdateUser(request.Context(), requestutil.Param(request, paramUserID), AdminUpdateInput{
		ProfileInput:           input.updateProfileRequest.toInput(),
		Role:                   role,
		IsMobileNumberVerified: input.IsMobileNumberVerified,
		IsEmailVerified:        input.IsEmailVerified,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
