package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestMemory_RoundTrip tests storing, reading and deleting an entry
func TestMemory_RoundTrip(t *testing.T) {
	store := NewMemory(time.Minute)

	store.Set("task:1", "cleaning")

	v, ok := store.Get("task:1")
	assert.True(t, ok)
	assert.Equal(t, "cleaning", v)

	store.Delete("task:1")

	_, ok = store.Get("task:1")
	assert.False(t, ok)
}

// TestMemory_Overwrite tests that a second Set replaces the value
func TestMemory_Overwrite(t *testing.T) {
	store := NewMemory(time.Minute)

	store.Set("task:1", "first")
	store.Set("task:1", "second")

	v, ok := store.Get("task:1")
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

// TestMemory_Expiry tests that entries disappear after the TTL
func TestMemory_Expiry(t *testing.T) {
	store := NewMemory(50 * time.Millisecond)

	store.Set("task:1", "cleaning")

	_, ok := store.Get("task:1")
	assert.True(t, ok)

	time.Sleep(120 * time.Millisecond)

	_, ok = store.Get("task:1")
	assert.False(t, ok)
}

// TestNoop tests that the no-op store never remembers anything
func TestNoop(t *testing.T) {
	store := Noop{}

	store.Set("task:1", "cleaning")

	_, ok := store.Get("task:1")
	assert.False(t, ok)

	// Deleting what was never kept must not panic
	store.Delete("task:1")
}

// TestKeys tests the key layouts for the two cached entity types
func TestKeys(t *testing.T) {
	assert.Equal(t, "task:abc", TaskKey("abc"))
	assert.Equal(t, "category:abc", CategoryKey("abc"))
}
