package plank

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateWebhook(t *testing.T) {
	c, fake := newTestClient(t)
	seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	hook, err := c.CreateWebhook(context.Background(), "board watcher", "https://hooks.example/plank", board)
	require.NoError(t, err)
	require.NoError(t, hook.ID.Validate())

	// the verification token is generated client-side as a UUID
	token, err := hook.VerificationToken(context.Background())
	require.NoError(t, err)
	_, err = uuid.Parse(token)
	require.NoError(t, err)

	cb, err := hook.CallbackURL(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example/plank", cb)
}

func TestWebhookDelete(t *testing.T) {
	c, fake := newTestClient(t)
	seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	hook, err := c.CreateWebhook(context.Background(), "watcher", "https://hooks.example/plank", board)
	require.NoError(t, err)

	cached := c.cache.len()
	require.NoError(t, hook.Delete(context.Background()))
	require.Equal(t, cached-1, c.cache.len())
}
