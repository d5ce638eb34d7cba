// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package request_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/request"
)

type profilePatch struct {
	Firstname *string `json:"firstname"`
}

/*
TestDecodeStrictJSON_RejectsUnknownField verifies the disallowed-field error.
*/
func TestDecodeStrictJSON_RejectsUnknownField(t *testing.T) {
	r := httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(`{"firstname":"Tai","role":"admin"}`))

	var target profilePatch
	err := request.DecodeStrictJSON(r, &target)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "role", ae.Details[0].Field)
}

/*
TestDecodeStrictJSON_AcceptsKnownFields verifies normal decoding.
*/
func TestDecodeStrictJSON_AcceptsKnownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(`{"firstname":"Tai"}`))

	var target profilePatch
	require.NoError(t, request.DecodeStrictJSON(r, &target))
	require.NotNil(t, target.Firstname)
	assert.Equal(t, "Tai", *target.Firstname)
}

/*
TestDecodeJSON_Malformed verifies malformed bodies become a validation error.
*/
func TestDecodeJSON_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"mobileNumberOrEmail":`))

	var target map[string]string
	err := request.DecodeJSON(r, &target)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}
