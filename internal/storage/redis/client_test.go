package storage

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedClient(t *testing.T) (*Client, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()

	return &Client{Client: db}, mock
}

func TestClient_GetBytes(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		c, mock := newMockedClient(t)
		mock.ExpectGet("vltweb:images").SetVal(`[{"title":"a"}]`)

		val, ok := c.GetBytes(ctx, "vltweb:images")
		assert.True(t, ok)
		assert.Equal(t, `[{"title":"a"}]`, string(val))

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss reads as absent", func(t *testing.T) {
		c, mock := newMockedClient(t)
		mock.ExpectGet("vltweb:images").RedisNil()

		_, ok := c.GetBytes(ctx, "vltweb:images")
		assert.False(t, ok)
	})
}

func TestClient_SetBytesAndInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mock := newMockedClient(t)

	mock.ExpectSet("vltweb:images", []byte(`[]`), 5*time.Minute).SetVal("OK")
	mock.ExpectDel("vltweb:images").SetVal(1)

	c.SetBytes(ctx, "vltweb:images", []byte(`[]`), 5*time.Minute)
	c.Invalidate(ctx, "vltweb:images")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_HealthCheck(t *testing.T) {
	c, mock := newMockedClient(t)
	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, c.HealthCheck(context.Background()))
}
