// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/users/auth"
)

/*
TestClassify verifies the mobile number pattern decides the channel.
*/
func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  auth.Channel
	}{
		{"+15555550100", auth.ChannelMobileNumber},
		{"+98912345", auth.ChannelMobileNumber},
		{"+1234", auth.ChannelMobileNumber},
		{"+123", auth.ChannelEmail},
		{"+0123456789", auth.ChannelEmail},
		{"15555550100", auth.ChannelEmail},
		{"+1234567890123456", auth.ChannelEmail},
		{"buyer@example.com", auth.ChannelEmail},
		{"", auth.ChannelEmail},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.Classify(tt.input))
		})
	}
}

/*
TestParseResetChannel verifies the explicit reset discriminator.
*/
func TestParseResetChannel(t *testing.T) {
	channel, ok := auth.ParseResetChannel("0")
	assert.True(t, ok)
	assert.Equal(t, auth.ChannelMobileNumber, channel)

	channel, ok = auth.ParseResetChannel("1")
	assert.True(t, ok)
	assert.Equal(t, auth.ChannelEmail, channel)

	_, ok = auth.ParseResetChannel("2")
	assert.False(t, ok)
}

/*
TestCheckIdentityAvailable verifies conflicts ignore the account being updated.
*/
func TestCheckIdentityAvailable(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, nil)
	ctx := context.Background()

	err := auth.CheckIdentityAvailable(ctx, f.users, auth.ChannelMobileNumber, testMobileNumber, "")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeIdentityConflict))
	assert.Equal(t, "Mobile number is already used", err.Error())

	assert.NoError(t, auth.CheckIdentityAvailable(ctx, f.users, auth.ChannelMobileNumber, testMobileNumber, owner.ID))
	assert.NoError(t, auth.CheckIdentityAvailable(ctx, f.users, auth.ChannelEmail, testEmail, ""))
	assert.NoError(t, auth.CheckIdentityAvailable(ctx, f.users, auth.ChannelEmail, "", ""))
}
