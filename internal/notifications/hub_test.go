package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.True(t, hub.IsOnline(1))
	assert.False(t, hub.IsOnline(2))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(1))

	// Unregistering twice is harmless.
	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(1))
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(1, nil)
	assert.Error(t, err)

	// Other users are unaffected.
	_, err = hub.Register(2, nil)
	assert.NoError(t, err)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()

	c1, err := hub.Register(1, nil)
	require.NoError(t, err)
	c2, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "new like")

	assert.Equal(t, "new like", string(<-c1.Send))
	assert.Equal(t, "new like", string(<-c2.Send))
	select {
	case msg := <-other.Send:
		t.Fatalf("user 2 should not receive user 1 messages, got %q", msg)
	default:
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	c1, err := hub.Register(1, nil)
	require.NoError(t, err)
	c2, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.BroadcastAll("maintenance at midnight")

	assert.Equal(t, "maintenance at midnight", string(<-c1.Send))
	assert.Equal(t, "maintenance at midnight", string(<-c2.Send))
}

func TestClient_TrySend(t *testing.T) {
	t.Run("delivers when buffer has room", func(t *testing.T) {
		hub := NewHub()
		client, err := hub.Register(1, nil)
		require.NoError(t, err)

		client.TrySend([]byte("hello"))
		assert.Equal(t, "hello", string(<-client.Send))
	})

	t.Run("full buffer drops without blocking", func(t *testing.T) {
		hub := NewHub()
		client, err := hub.Register(1, nil)
		require.NoError(t, err)

		for i := 0; i < cap(client.Send); i++ {
			client.Send <- []byte("fill")
		}

		done := make(chan struct{})
		go func() {
			client.TrySend([]byte("overflow"))
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("TrySend blocked on a full buffer")
		}
	})

	t.Run("closed channel does not panic", func(t *testing.T) {
		hub := NewHub()
		client, err := hub.Register(1, nil)
		require.NoError(t, err)

		close(client.Send)
		assert.NotPanics(t, func() {
			client.TrySend([]byte("late message"))
		})
	})
}

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "notifications:user:7", UserChannel(7))
	assert.Equal(t, "notifications:user:0", UserChannel(0))
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()

	assert.NoError(t, n.PublishUser(ctx, 1, "x"))
	assert.NoError(t, n.PublishBroadcast(ctx, "x"))
	assert.NoError(t, n.StartPatternSubscriber(ctx, func(string, string) {}))
}

func TestNotifier_NilReceiverIsNoop(t *testing.T) {
	// A nil *Notifier flows into publisher interfaces when Redis is down.
	var n *Notifier
	ctx := context.Background()

	assert.NotPanics(t, func() {
		assert.NoError(t, n.PublishUser(ctx, 1, "x"))
		assert.NoError(t, n.PublishBroadcast(ctx, "x"))
		assert.NoError(t, n.StartPatternSubscriber(ctx, func(string, string) {}))
	})
}

func TestHub_StartWiring_DeliversPublishedMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	notifier := NewNotifier(rdb)

	hub := NewHub()
	client, err := hub.Register(7, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	// The pattern subscription is established asynchronously; retry until the
	// published message lands.
	require.Eventually(t, func() bool {
		_ = notifier.PublishUser(ctx, 7, `{"type":"like"}`)
		select {
		case msg := <-client.Send:
			return string(msg) == `{"type":"like"}`
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)
}
