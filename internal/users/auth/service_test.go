// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/metrics"
	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/internal/users/auth"
	"github.com/taibuivan/storefront/internal/users/auth/authtest"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, code), "want %s, got %v", code, err)
}

/*
TestRegister_CreatesUnverifiedAccount verifies the identity lands on the right
channel with a hashed password.
*/
func TestRegister_CreatesUnverifiedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mobileUser, err := f.service.Register(ctx, auth.RegisterInput{MobileNumberOrEmail: testMobileNumber, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, testMobileNumber, mobileUser.MobileNumber)
	assert.Empty(t, mobileUser.Email)
	assert.Equal(t, sec.RoleUser, mobileUser.Role)
	assert.False(t, mobileUser.IsMobileNumberVerified)
	assert.NotEqual(t, testPassword, mobileUser.PasswordHash)
	assert.True(t, sec.CheckPasswordHash(testPassword, mobileUser.PasswordHash))

	emailUser, err := f.service.Register(ctx, auth.RegisterInput{MobileNumberOrEmail: testEmail, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, testEmail, emailUser.Email)
	assert.Empty(t, emailUser.MobileNumber)

	assert.Len(t, f.notifier.Messages(), 0)
	assert.Equal(t, metrics.OutcomeSuccess, f.flows.last(auth.FlowRegister))
}

/*
TestRegister_RejectsTakenIdentity verifies uniqueness on both channels.
*/
func TestRegister_RejectsTakenIdentity(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, func(user *auth.User) { user.Email = testEmail })
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{MobileNumberOrEmail: testMobileNumber, Password: testPassword})
	assertCode(t, err, apperr.CodeIdentityConflict)

	_, err = f.service.Register(ctx, auth.RegisterInput{MobileNumberOrEmail: testEmail, Password: testPassword})
	assertCode(t, err, apperr.CodeIdentityConflict)
	assert.Equal(t, "Email is already used", err.Error())
	assert.Equal(t, metrics.OutcomeDenied, f.flows.last(auth.FlowRegister))
}

/*
TestRegister_RejectsPasswordOverBcryptLimit verifies an over-long password is a
field error, not a server failure, for callers that skip HTTP validation.
*/
func TestRegister_RejectsPasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		MobileNumberOrEmail: testMobileNumber,
		Password:            "Aa1!" + strings.Repeat("x", 80),
	})
	assertCode(t, err, apperr.CodeValidation)
	assert.Empty(t, f.users.All())
	assert.Equal(t, metrics.OutcomeDenied, f.flows.last(auth.FlowRegister))
}

/*
TestRegister_ConcurrentSameIdentity verifies exactly one of many racing
registrations wins.
*/
func TestRegister_ConcurrentSameIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Register(ctx, auth.RegisterInput{MobileNumberOrEmail: testMobileNumber, Password: testPassword})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if apperr.HasCode(err, apperr.CodeIdentityConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, f.users.All(), 1)
}

/*
TestSendVerification verifies delivery per channel and the already-verified
and unknown-account failures.
*/
func TestSendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("mobile_code_by_sms", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedUser(t, nil)

		require.NoError(t, f.service.SendVerification(ctx, testMobileNumber))

		message, ok := f.notifier.Last()
		require.True(t, ok)
		assert.Equal(t, authtest.KindMobileVerification, message.Kind)
		assert.Equal(t, testMobileNumber, message.Recipient)
		assert.Regexp(t, `^[0-9]{6}$`, message.Value)
		assert.Equal(t, 1, f.credentials.Count(user.ID, auth.TokenVerifyMobileNumber))
	})

	t.Run("email_link", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, func(user *auth.User) { user.MobileNumber, user.Email = "", testEmail })

		require.NoError(t, f.service.SendVerification(ctx, testEmail))
		f.lastValue(t, authtest.KindEmailVerification)
	})

	t.Run("already_verified", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, func(user *auth.User) { user.IsMobileNumberVerified = true })

		err := f.service.SendVerification(ctx, testMobileNumber)
		assertCode(t, err, apperr.CodeBadRequest)
		assert.Equal(t, "Mobile number is already verified", err.Error())
	})

	t.Run("unknown_account", func(t *testing.T) {
		f := newFixture(t)

		err := f.service.SendVerification(ctx, testEmail)
		assertCode(t, err, apperr.CodeNotFound)
	})

	t.Run("delivery_failure_is_swallowed", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedUser(t, nil)
		f.notifier.Err = errors.New("sms gateway down")

		require.NoError(t, f.service.SendVerification(ctx, testMobileNumber))
		assert.Equal(t, 1, f.credentials.Count(user.ID, auth.TokenVerifyMobileNumber))
	})

	t.Run("old_codes_survive_until_consumed", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedUser(t, nil)

		require.NoError(t, f.service.SendVerification(ctx, testMobileNumber))
		first := f.lastValue(t, authtest.KindMobileVerification)
		require.NoError(t, f.service.SendVerification(ctx, testMobileNumber))
		assert.Equal(t, 2, f.credentials.Count(user.ID, auth.TokenVerifyMobileNumber))

		require.NoError(t, f.service.VerifyMobileNumber(ctx, testMobileNumber, first))
		assert.Zero(t, f.credentials.Count(user.ID, auth.TokenVerifyMobileNumber))
	})
}

/*
TestVerifyMobileNumber_ReplayFails verifies a code works exactly once and the
flag reads true afterwards.
*/
func TestVerifyMobileNumber_ReplayFails(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, nil)
	ctx := context.Background()

	require.NoError(t, f.service.SendVerification(ctx, testMobileNumber))
	code := f.lastValue(t, authtest.KindMobileVerification)

	require.NoError(t, f.service.VerifyMobileNumber(ctx, testMobileNumber, code))

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsMobileNumberVerified)

	err = f.service.VerifyMobileNumber(ctx, testMobileNumber, code)
	assertCode(t, err, apperr.CodeUnauthorized)
	assert.Equal(t, "Please authenticate", err.Error())
	assert.Equal(t, metrics.OutcomeDenied, f.flows.last(auth.FlowVerifyMobileNumber))
}

/*
TestVerifyMobileNumber_UniformDenial verifies every failure cause looks the same.
*/
func TestVerifyMobileNumber_UniformDenial(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, nil)
	ctx := context.Background()

	require.NoError(t, f.service.SendVerification(ctx, testMobileNumber))
	code := f.lastValue(t, authtest.KindMobileVerification)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	unknownAccount := f.service.VerifyMobileNumber(ctx, "+15555550199", code)
	wrongCode := f.service.VerifyMobileNumber(ctx, testMobileNumber, wrong)

	f.clock.Advance(10*time.Minute + time.Second)
	expired := f.service.VerifyMobileNumber(ctx, testMobileNumber, code)

	for _, err := range []error{unknownAccount, wrongCode, expired} {
		assertCode(t, err, apperr.CodeUnauthorized)
		assert.Equal(t, "Please authenticate", err.Error())
	}
}

/*
TestVerifyEmail verifies the link token flips the email flag once.
*/
func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, func(user *auth.User) { user.MobileNumber, user.Email = "", testEmail })
	ctx := context.Background()

	require.NoError(t, f.service.SendVerification(ctx, testEmail))
	token := f.lastValue(t, authtest.KindEmailVerification)

	require.NoError(t, f.service.VerifyEmail(ctx, token))

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsEmailVerified)
	assert.False(t, stored.IsMobileNumberVerified)

	assertCode(t, f.service.VerifyEmail(ctx, token), apperr.CodeUnauthorized)
}

/*
TestLogin verifies the password check, the verification gate and token issuance.
*/
func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("unverified_channel", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, nil)

		_, err := f.service.Login(ctx, auth.LoginInput{MobileNumberOrEmail: testMobileNumber, Password: testPassword})
		assertCode(t, err, apperr.CodeChannelNotVerified)
	})

	t.Run("other_channel_verified_does_not_count", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, func(user *auth.User) { user.Email, user.IsMobileNumberVerified = testEmail, true })

		_, err := f.service.Login(ctx, auth.LoginInput{MobileNumberOrEmail: testEmail, Password: testPassword})
		assertCode(t, err, apperr.CodeChannelNotVerified)
	})

	t.Run("wrong_password", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, func(user *auth.User) { user.IsMobileNumberVerified = true })

		_, err := f.service.Login(ctx, auth.LoginInput{MobileNumberOrEmail: testMobileNumber, Password: newPassword})
		assertCode(t, err, apperr.CodeUnauthorized)
	})

	t.Run("unknown_identity", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Login(ctx, auth.LoginInput{MobileNumberOrEmail: testEmail, Password: testPassword})
		assertCode(t, err, apperr.CodeUnauthorized)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedUser(t, func(user *auth.User) { user.IsMobileNumberVerified = true })

		result, err := f.service.Login(ctx, auth.LoginInput{MobileNumberOrEmail: testMobileNumber, Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, f.clock.Now().Add(30*time.Minute), result.Tokens.Access.ExpiresAt)
		assert.Equal(t, f.clock.Now().Add(30*24*time.Hour), result.Tokens.Refresh.ExpiresAt)
		assert.Equal(t, 1, f.credentials.Count(user.ID, auth.TokenRefresh))
		assert.Equal(t, metrics.OutcomeSuccess, f.flows.last(auth.FlowLogin))
	})
}

func loggedIn(t *testing.T, f *fixture) *auth.LoginResult {
	t.Helper()
	f.seedUser(t, func(user *auth.User) { user.IsMobileNumberVerified = true })

	result, err := f.service.Login(context.Background(), auth.LoginInput{MobileNumberOrEmail: testMobileNumber, Password: testPassword})
	require.NoError(t, err)
	return result
}

/*
TestLogout verifies a refresh token logs out once and then is not found.
*/
func TestLogout(t *testing.T) {
	f := newFixture(t)
	result := loggedIn(t, f)
	ctx := context.Background()
	refresh := result.Tokens.Refresh.Value.String()

	require.NoError(t, f.service.Logout(ctx, refresh))
	assertCode(t, f.service.Logout(ctx, refresh), apperr.CodeNotFound)
	assertCode(t, f.service.Logout(ctx, "not.a.token"), apperr.CodeNotFound)

	_, err := f.service.RefreshTokens(ctx, refresh)
	assertCode(t, err, apperr.CodeUnauthorized)
}

/*
TestRefreshTokens_Rotation verifies the old token dies and the new one works
exactly once more.
*/
func TestRefreshTokens_Rotation(t *testing.T) {
	f := newFixture(t)
	result := loggedIn(t, f)
	ctx := context.Background()
	original := result.Tokens.Refresh.Value.String()

	rotated, err := f.service.RefreshTokens(ctx, original)
	require.NoError(t, err)
	assert.NotEqual(t, original, rotated.Refresh.Value.String())

	_, err = f.service.RefreshTokens(ctx, original)
	assertCode(t, err, apperr.CodeUnauthorized)

	_, err = f.service.RefreshTokens(ctx, rotated.Refresh.Value.String())
	require.NoError(t, err)

	_, err = f.service.RefreshTokens(ctx, rotated.Refresh.Value.String())
	assertCode(t, err, apperr.CodeUnauthorized)
}

/*
TestRefreshTokens_ConcurrentReuse verifies only one of two racing rotations of
the same token succeeds.
*/
func TestRefreshTokens_ConcurrentReuse(t *testing.T) {
	f := newFixture(t)
	result := loggedIn(t, f)
	refresh := result.Tokens.Refresh.Value.String()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.RefreshTokens(context.Background(), refresh)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assertCode(t, err, apperr.CodeUnauthorized)
		}
	}
	assert.Equal(t, 1, successes)
}

/*
TestRefreshTokens_DeletedAccount verifies a token whose owner is gone is refused.
*/
func TestRefreshTokens_DeletedAccount(t *testing.T) {
	f := newFixture(t)
	stranger := &auth.User{ID: "0190c0de-0000-7000-8000-0000000000ff", Role: sec.RoleUser}

	issued, err := f.issuer.IssueRefresh(context.Background(), stranger)
	require.NoError(t, err)

	_, err = f.service.RefreshTokens(context.Background(), issued.Value.String())
	assertCode(t, err, apperr.CodeUnauthorized)
}

/*
TestForgotPassword_Mobile verifies the SMS code is exchanged for a reset token
that then resets the password.
*/
func TestForgotPassword_Mobile(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, nil)
	ctx := context.Background()

	require.NoError(t, f.service.ForgotPassword(ctx, testMobileNumber))
	code := f.lastValue(t, authtest.KindMobileVerification)

	resetToken, err := f.service.VerifyMobileNumberForResetPassword(ctx, testMobileNumber, code)
	require.NoError(t, err)
	assert.NotEmpty(t, resetToken)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsMobileNumberVerified)

	// The email discriminator names the wrong token type.
	err = f.service.ResetPassword(ctx, auth.ResetPasswordInput{Token: resetToken, Channel: auth.ChannelEmail, Password: newPassword})
	assertCode(t, err, apperr.CodeUnauthorized)

	require.NoError(t, f.service.ResetPassword(ctx, auth.ResetPasswordInput{Token: resetToken, Channel: auth.ChannelMobileNumber, Password: newPassword}))

	stored, err = f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash(newPassword, stored.PasswordHash))
	assert.False(t, sec.CheckPasswordHash(testPassword, stored.PasswordHash))
	assert.Zero(t, f.credentials.Count(user.ID, auth.TokenResetPasswordViaMobileNumber))
}

/*
TestForgotPassword_Email verifies the reset link works once.
*/
func TestForgotPassword_Email(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, func(user *auth.User) { user.MobileNumber, user.Email = "", testEmail })
	ctx := context.Background()

	require.NoError(t, f.service.ForgotPassword(ctx, testEmail))
	token := f.lastValue(t, authtest.KindResetPasswordEmail)

	input := auth.ResetPasswordInput{Token: token, Channel: auth.ChannelEmail, Password: newPassword}
	require.NoError(t, f.service.ResetPassword(ctx, input))
	assertCode(t, f.service.ResetPassword(ctx, input), apperr.CodeUnauthorized)
}

/*
TestForgotPassword_UnknownAccount verifies a missing identity is reported.
*/
func TestForgotPassword_UnknownAccount(t *testing.T) {
	f := newFixture(t)

	assertCode(t, f.service.ForgotPassword(context.Background(), testEmail), apperr.CodeNotFound)
}

/*
TestVerifyAccessToken verifies the middleware-facing check answers the uniform
denial.
*/
func TestVerifyAccessToken(t *testing.T) {
	f := newFixture(t)
	result := loggedIn(t, f)
	ctx := context.Background()

	claims, err := f.service.VerifyAccessToken(ctx, result.Tokens.Access.Value.String())
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.Subject)
	assert.Equal(t, "user", claims.Role)

	_, err = f.service.VerifyAccessToken(ctx, result.Tokens.Refresh.Value.String())
	assertCode(t, err, apperr.CodeUnauthorized)
}

// brokenUsers fails every lookup with a storage error.
type brokenUsers struct{ auth.UserRepository }

func (brokenUsers) FindByMobileNumber(context.Context, string) (*auth.User, error) {
	return nil, errors.New("connection reset")
}

/*
TestLogin_StorageOutageIsInternal verifies outages are not reported as denials.
*/
func TestLogin_StorageOutageIsInternal(t *testing.T) {
	f := newFixture(t)
	service := auth.NewService(brokenUsers{}, f.credentials, f.issuer, f.verifier, f.notifier, slogDiscard(), auth.WithFlowRecorder(f.flows))

	_, err := service.Login(context.Background(), auth.LoginInput{MobileNumberOrEmail: testMobileNumber, Password: testPassword})
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))
	assert.Equal(t, metrics.OutcomeError, f.flows.last(auth.FlowLogin))
}
