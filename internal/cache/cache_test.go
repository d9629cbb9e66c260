package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key("cities", map[string]string{"bhk": "3", "type": "HOUSE"})
	b := Key("cities", map[string]string{"type": "HOUSE", "bhk": "3"})
	c := Key("cities", map[string]string{"type": "HOUSE", "bhk": "4"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^cities:[0-9a-f]{32}$`, a)
}

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", map[string]int{"count": 3}, time.Minute))

	var got map[string]int
	found, err := m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got["count"])

	now = now.Add(2 * time.Minute)
	found, err = m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryDeletePrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, Key("cities", map[string]string{"bhk": "2"}), 1, time.Minute))
	require.NoError(t, m.Set(ctx, Key("cities", map[string]string{"bhk": "3"}), 2, time.Minute))
	require.NoError(t, m.Set(ctx, "sessions:1", 3, time.Minute))

	require.NoError(t, m.DeletePrefix(ctx, "cities:"))

	var v int
	found, err := m.Get(ctx, Key("cities", map[string]string{"bhk": "2"}), &v)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = m.Get(ctx, "sessions:1", &v)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	require.NoError(t, c.Set(context.Background(), "k", 1, time.Minute))
	var v int
	found, err := c.Get(context.Background(), "k", &v)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.DeletePrefix(context.Background(), "k"))
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "://nope", "propsnap:")
	assert.Error(t, err)
}
