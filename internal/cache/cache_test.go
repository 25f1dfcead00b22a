package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
)

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewBoundedMemoryCache(0, 0)
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))
	data, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len(), "expired entry is removed on read")
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	c := NewBoundedMemoryCache(10, 3)
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := range 10 {
		now = now.Add(time.Second)
		require.NoError(t, c.Set(fmt.Sprintf("k%d", i), []byte{byte(i)}, time.Hour))
	}
	assert.Equal(t, 10, c.Len())

	now = now.Add(time.Second)
	require.NoError(t, c.Set("fresh", []byte("x"), time.Hour))

	assert.Equal(t, 8, c.Len())
	for i := range 3 {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.False(t, ok, "k%d should be evicted", i)
	}
	_, ok := c.Get("k3")
	assert.True(t, ok)
	_, ok = c.Get("fresh")
	assert.True(t, ok)
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewBoundedMemoryCache(2, 1)
	require.NoError(t, c.Set("a", nil, time.Hour))
	require.NoError(t, c.Set("b", nil, time.Hour))
	require.NoError(t, c.Set("a", []byte("2"), time.Hour))
	assert.Equal(t, 2, c.Len())
}

func TestMultiLevelCache(t *testing.T) {
	db, err := database.Open(":memory:", logger.NewTestLogger())
	require.NoError(t, err)
	defer db.Close()

	mem := NewMemoryCache()
	persistent := NewDBCache(db)
	c := NewMultiLevelCache(mem, persistent, logger.NewTestLogger())

	require.NoError(t, c.Set(MemoryOnlyPrefix+"throttle:1", []byte("1"), time.Minute))
	_, ok := persistent.Get("throttle:1")
	assert.False(t, ok, "mem: keys stay in memory")
	_, ok = c.Get(MemoryOnlyPrefix + "throttle:1")
	assert.True(t, ok)

	require.NoError(t, c.Set("resp:abc", []byte("answer"), time.Minute))
	require.NoError(t, mem.Clear())
	data, ok := c.Get("resp:abc")
	require.True(t, ok, "falls back to the database level")
	assert.Equal(t, []byte("answer"), data)
	_, ok = mem.Get("resp:abc")
	assert.True(t, ok, "promoted back to memory")

	require.NoError(t, c.Delete("resp:abc"))
	_, ok = c.Get("resp:abc")
	assert.False(t, ok)
}

func TestDBCache_Expired(t *testing.T) {
	db, err := database.Open(":memory:", logger.NewTestLogger())
	require.NoError(t, err)
	defer db.Close()

	c := NewDBCache(db)
	require.NoError(t, c.Set("gone", []byte("x"), -time.Minute))
	_, ok := c.Get("gone")
	assert.False(t, ok)
}
