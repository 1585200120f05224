package realtime

import (
	"context"
	"testing"
	"time"

	"buildnchill-shop/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan models.Change) models.Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return models.Change{}
	}
}

func TestMemoryBus_FanOut(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	b, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, models.TableNews, models.ChangeInsert))

	for _, ch := range []<-chan models.Change{a, b} {
		c := receive(t, ch)
		assert.Equal(t, models.TableNews, c.Table)
		assert.Equal(t, models.ChangeInsert, c.Event)
	}
}

func TestMemoryBus_UnsubscribeOnCancel(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bus.SubscriberCount())

	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bus := NewRedisBus(client, "test:changes", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, models.TableSiteSettings, models.ChangeUpdate))

	c := receive(t, ch)
	assert.Equal(t, models.TableSiteSettings, c.Table)
	assert.Equal(t, models.ChangeUpdate, c.Event)
	assert.False(t, c.At.IsZero())
}

func TestRedisBus_SkipsMalformedPayload(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bus := NewRedisBus(client, "test:changes", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, "test:changes", "not-json").Err())
	require.NoError(t, bus.Publish(ctx, models.TableContacts, models.ChangeDelete))

	c := receive(t, ch)
	assert.Equal(t, models.TableContacts, c.Table)
}
