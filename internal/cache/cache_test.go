package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSetGet(t *testing.T) {
	c := NewLocal()

	c.Set("k", "v", time.Minute)

	got, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, "v", got)
}

func TestLocalGetMissing(t *testing.T) {
	c := NewLocal()

	_, found := c.Get("absent")
	assert.False(t, found)
}

func TestLocalTTLExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLocalWithClock(func() time.Time { return now })

	c.Set("k", int64(42), 5*time.Second)

	now = now.Add(4 * time.Second)
	got, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, int64(42), got)

	now = now.Add(time.Second)
	_, found = c.Get("k")
	assert.False(t, found, "entry must expire once the TTL has elapsed")

	// expired entry is dropped, not resurrected
	_, found = c.Get("k")
	assert.False(t, found)
}

func TestLocalZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLocalWithClock(func() time.Time { return now })

	c.Set("k", "v", 0)

	now = now.Add(24 * time.Hour)
	_, found := c.Get("k")
	assert.True(t, found)
}

func TestLocalDelete(t *testing.T) {
	c := NewLocal()

	c.Set("k", "v", time.Minute)
	c.Delete("k")

	_, found := c.Get("k")
	assert.False(t, found)
}

func TestLocalOverwrite(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLocalWithClock(func() time.Time { return now })

	c.Set("k", "old", time.Second)
	c.Set("k", "new", time.Minute)

	now = now.Add(30 * time.Second)
	got, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, "new", got, "last writer wins")
}
