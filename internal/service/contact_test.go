package service

import (
	"context"
	"testing"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSubmitAndRead(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})

	msg, err := env.contact.Submit(ctx, &dto.ContactRequest{
		Name:    "  Omar ",
		Email:   "Omar@Example.com",
		Phone:   "+201234567890",
		Message: "Need a custom plan",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^msg_[0-9a-f]{12}$`, msg.MessageID)
	assert.Equal(t, "Omar", msg.Name)
	assert.Equal(t, "omar@example.com", msg.Email)
	assert.False(t, msg.IsRead)

	_, err = env.contact.Submit(ctx, &dto.ContactRequest{Name: " ", Email: "a@example.com", Message: "x"})
	requireAppError(t, err, apperror.ErrBadRequest)

	stats, err := env.reports.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.UnreadMessages)

	require.NoError(t, env.contact.MarkRead(ctx, msg.MessageID))
	requireAppError(t, env.contact.MarkRead(ctx, "msg_missing"), apperror.ErrNotFound)

	messages, err := env.contact.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsRead)

	stats, err = env.reports.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.UnreadMessages)
}
