// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "firstname", "Tai", false},
		{"empty_string", "firstname", "", true},
		{"whitespace_only", "firstname", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Password checks every clause of the password policy.
*/
func TestValidator_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		isValid  bool
	}{
		{"conforming", "Secret#123", true},
		{"dash_special", "Abcdef-1", true},
		{"too_short", "Se#1abc", false},
		{"no_upper", "secret#123", false},
		{"no_lower", "SECRET#123", false},
		{"no_digit", "Secret#abc", false},
		{"no_special", "Secret1234", false},
		{"special_outside_set", "Secret_123", false},
		{"at_byte_limit", "Aa1!" + strings.Repeat("x", 68), true},
		{"over_byte_limit", "Aa1!" + strings.Repeat("x", 80), false},
		{"multibyte_over_limit", "Aa1!" + strings.Repeat("é", 35), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Password("password", tt.password)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_MobileNumberOrEmail checks the combined identity shape rule.
*/
func TestValidator_MobileNumberOrEmail(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"mobile", "+15555550100", true},
		{"shortest_mobile", "+1234", true},
		{"mobile_leading_zero", "+05555550100", false},
		{"mobile_too_long", "+1234567890123456", false},
		{"email", "shopper@example.com", true},
		{"display_name_email", "Shopper <shopper@example.com>", false},
		{"garbage", "not-an-identity", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.MobileNumberOrEmail("mobileNumberOrEmail", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_CodesAndTokens checks numeric code, phone and signed-token shapes.
*/
func TestValidator_CodesAndTokens(t *testing.T) {
	v := &validate.Validator{}
	v.NumericCode("token", "012345", 6).
		PhoneNumber("phoneNumber", "02112345678").
		SignedToken("refreshToken", "aaa.bbb.ccc")
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.NumericCode("token", "12345", 6).
		NumericCode("token", "12a456", 6).
		PhoneNumber("phoneNumber", "2112345678").
		SignedToken("refreshToken", "no dots here")
	require.Error(t, v.Err())
	assert.Len(t, apperr.As(v.Err()).Details, 4)
}

/*
TestValidator_Chain_Failure tests error accumulation and first-failure reporting.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("firstname", "").      // Fails
		MinLen("firstname", "a", 3).    // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 3)
	assert.Contains(t, ae.Message, "firstname")
	assert.Contains(t, ae.Message, "This field is required")
}
