package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211", "newsscraper_test:")

	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	// Set a value
	err := mc.Set("test key", []byte("test_value"), 1*time.Second)
	assert.NoError(t, err)

	// Get the value
	value, err := mc.Get("test key")
	assert.NoError(t, err)
	assert.Equal(t, "test_value", string(value))

	// Delete the value
	err = mc.Delete("test key")
	assert.NoError(t, err)

	// Try to get the deleted value
	_, err = mc.Get("test key")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Deleting twice is not an error
	assert.NoError(t, mc.Delete("test key"))
}

func TestMemcacheKeySanitizing(t *testing.T) {
	mc := NewMemcacheService("localhost:11211", "p:")
	assert.Equal(t, "p:image_host_rate_limited:img_example.com", mc.key("image_host_rate_limited:img example.com"))
}
