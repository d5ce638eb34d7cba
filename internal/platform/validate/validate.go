// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Handlers run the Validator on decoded payloads before calling a service.
// Requests that fail here never reach the auth flows.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/sec"
)

// PasswordSpecialChars is the fixed set of which a password needs at least one.
const PasswordSpecialChars = "#?!@$%^&*-"

// PasswordMaxBytes is the longest password bcrypt accepts.
const PasswordMaxBytes = sec.MaxPasswordBytes

var (
	// mobileNumberRegex matches an international mobile number: "+", 1-9, then 3-14 digits.
	mobileNumberRegex = regexp.MustCompile(`^\+[1-9][0-9]{3,14}$`)
	// phoneNumberRegex matches a local landline: leading zero, area code, subscriber digits.
	phoneNumberRegex = regexp.MustCompile(`^0[0-9]{2,}[0-9]{7,}$`)
	// signedTokenRegex matches the compact JWS shape.
	signedTokenRegex = regexp.MustCompile(`^[A-Za-z0-9\-_=]+\.[A-Za-z0-9\-_=]+\.?[A-Za-z0-9\-_.+/=]*$`)
	// digitsRegex matches numeric-only strings.
	digitsRegex = regexp.MustCompile(`^[0-9]+$`)
	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// IsMobileNumber reports whether value has the international mobile shape.
func IsMobileNumber(value string) bool {
	return mobileNumberRegex.MatchString(value)
}

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Length fails unless the value has exactly n characters.
func (v *Validator) Length(field, value string, n int) *Validator {
	if utf8.RuneCountInString(value) != n {
		v.add(field, fmt.Sprintf("Must be exactly %d characters", n))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// Email fails if the value is not a bare RFC 5322 address.
func (v *Validator) Email(field, value string) *Validator {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// MobileNumber fails if the value is not an international mobile number.
func (v *Validator) MobileNumber(field, value string) *Validator {
	if !mobileNumberRegex.MatchString(value) {
		v.add(field, "Must be a valid mobile number")
	}
	return v
}

// PhoneNumber fails if the value is not a landline number.
func (v *Validator) PhoneNumber(field, value string) *Validator {
	if !phoneNumberRegex.MatchString(value) {
		v.add(field, "Must be a valid phone number")
	}
	return v
}

// MobileNumberOrEmail fails unless the value is a mobile number or an email.
func (v *Validator) MobileNumberOrEmail(field, value string) *Validator {
	if mobileNumberRegex.MatchString(value) {
		return v
	}
	if addr, err := mail.ParseAddress(value); err == nil && addr.Address == value {
		return v
	}
	v.add(field, "Must be a valid mobile number or email address")
	return v
}

// Password fails unless the value satisfies the account password policy.
//
// # Policy
//
// At least 8 characters with one uppercase letter, one lowercase letter,
// one digit and one character from [PasswordSpecialChars], and no more than
// [PasswordMaxBytes] bytes.
func (v *Validator) Password(field, value string) *Validator {
	var upper, lower, digit, special bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			special = true
		}
	}

	if utf8.RuneCountInString(value) < 8 || !upper || !lower || !digit || !special {
		v.add(field, "Must be at least 8 characters with one uppercase letter, one lowercase letter, one number and one special character")
		return v
	}
	if len(value) > PasswordMaxBytes {
		v.add(field, fmt.Sprintf("Must be at most %d bytes long", PasswordMaxBytes))
	}
	return v
}

// SignedToken fails if the value does not have the compact JWS shape.
func (v *Validator) SignedToken(field, value string) *Validator {
	if !signedTokenRegex.MatchString(value) {
		v.add(field, "Must be a valid token")
	}
	return v
}

// NumericCode fails unless the value is exactly n digits.
func (v *Validator) NumericCode(field, value string, n int) *Validator {
	if len(value) != n || !digitsRegex.MatchString(value) {
		v.add(field, fmt.Sprintf("Must be a %d digit code", n))
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	lower := strings.ToLower(value)
	if !uuidRegex.MatchString(lower) {
		v.add(field, "Must be a valid UUID")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("mobileNumberOrEmail", len(ids) == 0, "Must provide a mobile number or email")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// The message names the first failure; every failure is kept in Details.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	first := v.errs[0]
	return apperr.ValidationError(fmt.Sprintf("%q: %s", first.Field, first.Message), v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError(fmt.Sprintf("%q: %s", field, message), apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
