package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := New[string, int]()
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Size())

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key1", 100)
	c.Set("key2", 200)
	c.Set("key1", 150)
	assert.Equal(t, 2, c.Size())

	val, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, 150, val)

	c.Delete("key1")
	c.Delete("nonexistent")
	_, ok = c.Get("key1")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"key2"}, c.Keys())
}

func TestCache_DeleteFunc(t *testing.T) {
	c := New[string, int]()
	c.Set("series:1", 1)
	c.Set("series:2", 2)
	c.Set("group:1", 3)

	removed := c.DeleteFunc(func(k string, _ int) bool { return k[:6] == "series" })
	assert.Equal(t, 2, removed)
	assert.ElementsMatch(t, []string{"group:1"}, c.Keys())

	removed = c.DeleteFunc(func(_ string, v int) bool { return v > 10 })
	assert.Equal(t, 0, removed)

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int, int]()
	var wg sync.WaitGroup
	numGoroutines := 50
	numOperations := 200

	for i := range numGoroutines {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := range numOperations {
				c.Set(id*numOperations+j, j)
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := range numOperations {
				c.Get(id*numOperations + j)
				c.Keys()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines*numOperations, c.Size())
}
