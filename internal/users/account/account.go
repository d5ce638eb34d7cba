// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management and account administration.

Account holders read and edit their own profile through /users/me. Staff with
the manageUser right create, list, inspect and edit any account through
/admin/users.

# Architecture

  - Entities: The package reuses [auth.User]; it adds no table of its own.
  - Storage: [Repository] extends [auth.UserRepository] with filtered listing.
  - Identity: Changing a mobile number or email clears the matching verified
    flag and is checked for uniqueness like registration is.
*/
package account

import (
	"context"

	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/internal/users/auth"
	"github.com/taibuivan/storefront/pkg/pagination"
)

// # Inputs

// ProfileInput is the partial set of profile fields an account holder may
// change. A nil field is left untouched.
type ProfileInput struct {
	MobileNumber *string
	Email        *string
	Firstname    *string
	Lastname     *string
	Avatar       *string
	PhoneNumber  *string
	Address      *auth.Address
}

// AdminUpdateInput extends [ProfileInput] with the fields only staff may set.
type AdminUpdateInput struct {
	ProfileInput
	Role                   *sec.UserRole
	IsMobileNumberVerified *bool
	IsEmailVerified        *bool
}

// CreateInput holds the data for an account created by staff.
type CreateInput struct {
	MobileNumberOrEmail string
	Password            string
	Role                sec.UserRole
	Firstname           string
	Lastname            string
}

// # Listing

// ListFilter narrows an account listing. Empty strings and nil flags match
// everything.
type ListFilter struct {
	MobileNumber           string
	Email                  string
	Firstname              string
	Lastname               string
	PhoneNumber            string
	Role                   sec.UserRole
	IsMobileNumberVerified *bool
	IsEmailVerified        *bool

	// ExcludeID hides one account, normally the caller's.
	ExcludeID string

	Sort []pagination.Sort
	pagination.Params
}

// SortableFields lists the "sortBy" fields accepted by the listing, keyed by
// their JSON name.
var SortableFields = map[string]bool{
	auth.FieldMobileNumber: true,
	auth.FieldEmail:        true,
	auth.FieldFirstname:    true,
	auth.FieldLastname:     true,
	auth.FieldRole:         true,
	"createdAt":            true,
}

// # Repository Contracts

// Repository is the persistence contract used by [Service].
type Repository interface {
	auth.UserRepository

	/*
		List returns one page of accounts matching filter and the total
		number of matches.

		Parameters:
		  - context: context.Context
		  - filter: ListFilter

		Returns:
		  - []*auth.User: The requested page
		  - int: Total matches across all pages
		  - error: Storage failures
	*/
	List(context context.Context, filter ListFilter) ([]*auth.User, int, error)
}
