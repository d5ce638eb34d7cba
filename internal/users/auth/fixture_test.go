// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/internal/users/auth"
	"github.com/taibuivan/storefront/internal/users/auth/authtest"
)

const (
	testMobileNumber = "+15555550100"
	testEmail        = "buyer@example.com"
	testPassword     = "Secret#123"
	newPassword      = "Fresh#4567"
)

// testClock is a settable clock shared by the issuer and the verifier.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Set(now time.Time) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = now
}

func (clock *testClock) Advance(d time.Duration) {
	clock.Set(clock.Now().Add(d))
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fixture wires a Service over in-memory collaborators.
type fixture struct {
	users       *authtest.Users
	credentials *authtest.Credentials
	notifier    *authtest.Notifier
	clock       *testClock
	signer      *sec.TokenService
	issuer      *auth.Issuer
	verifier    *auth.Verifier
	service     *auth.Service
	flows       *flowCounter
}

type flowCounter struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (counter *flowCounter) RecordAuthFlow(flow, outcome string) {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	counter.outcomes[flow] = append(counter.outcomes[flow], outcome)
}

func (counter *flowCounter) last(flow string) string {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	seen := counter.outcomes[flow]
	if len(seen) == 0 {
		return ""
	}
	return seen[len(seen)-1]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	signer, err := sec.NewTokenService("test-secret", "storefront")
	require.NoError(t, err)

	f := &fixture{
		users:       authtest.NewUsers(),
		credentials: authtest.NewCredentials(),
		notifier:    &authtest.Notifier{},
		clock:       newTestClock(),
		signer:      signer,
		flows:       &flowCounter{outcomes: make(map[string][]string)},
	}

	f.issuer = auth.NewIssuer(signer, f.credentials, auth.DefaultTokenPolicy(), auth.WithIssuerClock(f.clock.Now))
	f.verifier = auth.NewVerifier(signer, f.credentials, auth.WithVerifierClock(f.clock.Now))
	f.service = auth.NewService(
		f.users, f.credentials, f.issuer, f.verifier, f.notifier,
		slogDiscard(),
		auth.WithFlowRecorder(f.flows),
	)
	return f
}

// seedUser stores an account with the given identity and password.
func (f *fixture) seedUser(t *testing.T, mutate func(*auth.User)) *auth.User {
	t.Helper()

	hash, err := sec.HashPassword(testPassword)
	require.NoError(t, err)

	user := &auth.User{
		ID:           "0190c0de-0000-7000-8000-000000000001",
		MobileNumber: testMobileNumber,
		PasswordHash: hash,
		Role:         sec.RoleUser,
	}
	if mutate != nil {
		mutate(user)
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// lastValue returns the value of the newest captured notification.
func (f *fixture) lastValue(t *testing.T, kind string) string {
	t.Helper()

	message, ok := f.notifier.Last()
	require.True(t, ok, "no notification captured")
	require.Equal(t, kind, message.Kind)
	return message.Value
}
