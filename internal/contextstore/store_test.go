package contextstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eda-copilot/internal/common/logger"
	"eda-copilot/internal/intent"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl, logger.NewTestLogger(t)), mr
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	cc := intent.ConversationContext{
		"waferDiameter": intent.Number(300),
		"dieWidth":      intent.Number(10),
		"moduleName":    intent.Text("alu"),
		"vendors":       intent.List("tsmc", "samsung"),
	}
	require.NoError(t, store.Save(ctx, "session-1", cc))

	got, err := store.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, cc, got)
}

func TestLoadUnknownSessionIsEmpty(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	got, err := store.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got, "callers may merge into the result directly")
}

func TestSessionsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", intent.ConversationContext{
		"waferDiameter": intent.Number(200),
	}))
	require.NoError(t, store.Save(ctx, "b", intent.ConversationContext{
		"waferDiameter": intent.Number(450),
	}))

	a, err := store.Load(ctx, "a")
	require.NoError(t, err)
	b, err := store.Load(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, intent.Number(200), a["waferDiameter"])
	assert.Equal(t, intent.Number(450), b["waferDiameter"])
}

func TestContextExpires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", intent.ConversationContext{
		"dieWidth": intent.Number(5),
	}))

	mr.FastForward(2 * time.Minute)

	got, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", intent.ConversationContext{
		"dieWidth": intent.Number(5),
	}))
	require.NoError(t, store.Clear(ctx, "s"))

	got, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCorruptRecordIsDiscarded(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	mr.Set(sessionKey("s"), "{not json")

	got, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, mr.Exists(sessionKey("s")), "corrupt record should be deleted")
}
