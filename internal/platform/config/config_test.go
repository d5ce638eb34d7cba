// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/storefront/internal/platform/config"
)

func baseVars() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/storefront",
		"JWT_SECRET":   "test-secret",
	}
}

/*
TestLoad_Defaults verifies defaults and derived lifetimes.
*/
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.LoadFromMap(baseVars())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.CredentialStorePostgres, cfg.CredentialStore)
	assert.Equal(t, config.NotifierLog, cfg.Notifier)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL())
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, 10*time.Minute, cfg.VerifyMobileNumberTTL())
	assert.Equal(t, 10*time.Minute, cfg.ResetPasswordViaEmailTTL())
	assert.False(t, cfg.UsesRSAKeys())
}

/*
TestLoad_IndependentLifetimes verifies each lifetime reads its own variable.
*/
func TestLoad_IndependentLifetimes(t *testing.T) {
	vars := baseVars()
	vars["JWT_VERIFY_MOBILE_NUMBER_EXPIRATION_MINUTES"] = "3"
	vars["JWT_RESET_PASSWORD_VIA_MOBILE_NUMBER_EXPIRATION_MINUTES"] = "7"

	cfg, err := config.LoadFromMap(vars)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Minute, cfg.VerifyMobileNumberTTL())
	assert.Equal(t, 7*time.Minute, cfg.ResetPasswordViaMobileNumberTTL())
}

/*
TestLoad_CrossFieldRules verifies combinations that must be rejected.
*/
func TestLoad_CrossFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing_database_url", func(v map[string]string) { delete(v, "DATABASE_URL") }},
		{"missing_signing_key", func(v map[string]string) { delete(v, "JWT_SECRET") }},
		{"half_rsa_pair", func(v map[string]string) {
			delete(v, "JWT_SECRET")
			v["JWT_PRIVATE_KEY_PATH"] = "/keys/private.pem"
		}},
		{"redis_store_without_url", func(v map[string]string) { v["CREDENTIAL_STORE"] = "redis" }},
		{"unknown_store", func(v map[string]string) { v["CREDENTIAL_STORE"] = "mongo" }},
		{"live_notifier_without_credentials", func(v map[string]string) { v["NOTIFIER"] = "live" }},
		{"non_positive_lifetime", func(v map[string]string) { v["JWT_ACCESS_EXPIRATION_MINUTES"] = "0" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := baseVars()
			tt.mutate(vars)

			_, err := config.LoadFromMap(vars)
			assert.Error(t, err)
		})
	}
}

/*
TestLoad_RSAKeyPair verifies key paths replace the shared secret.
*/
func TestLoad_RSAKeyPair(t *testing.T) {
	vars := baseVars()
	delete(vars, "JWT_SECRET")
	vars["JWT_PRIVATE_KEY_PATH"] = "/keys/private.pem"
	vars["JWT_PUBLIC_KEY_PATH"] = "/keys/public.pem"
	vars["CREDENTIAL_STORE"] = "redis"
	vars["REDIS_URL"] = "redis://localhost:6379/0"

	cfg, err := config.LoadFromMap(vars)
	require.NoError(t, err)
	assert.True(t, cfg.UsesRSAKeys())
	assert.Equal(t, config.CredentialStoreRedis, cfg.CredentialStore)
}
