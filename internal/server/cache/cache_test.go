package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheBasics(t *testing.T) {
	c := New(time.Minute, time.Minute)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.ItemCount())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.ItemCount())
}

func TestCacheExpiry(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.SetWithTTL("short", "v", 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("short")
	assert.False(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	c := New(time.Minute, time.Minute)
	var loads atomic.Int32
	load := func() (any, error) {
		loads.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "feed", nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad("k", load, nil)
			assert.NoError(t, err)
			assert.Equal(t, "feed", v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), loads.Load())

	_, err := c.GetOrLoad("k", load, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), loads.Load())
}

func TestGetOrLoadSkipsFailures(t *testing.T) {
	c := New(time.Minute, time.Minute)

	_, err := c.GetOrLoad("err", func() (any, error) { return nil, errors.New("boom") }, nil)
	require.Error(t, err)
	_, ok := c.Get("err")
	assert.False(t, ok)

	v, err := c.GetOrLoad("rejected", func() (any, error) { return "fallback", nil },
		func(v any) bool { return v != "fallback" })
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)
	_, ok = c.Get("rejected")
	assert.False(t, ok)
}
