package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiterPerKey(t *testing.T) {
	l := NewMemoryLimiter(2, time.Hour)

	assert.True(t, l.Allow("alice"))
	assert.True(t, l.Allow("alice"))
	assert.False(t, l.Allow("alice"))
	assert.True(t, l.Allow("bob"))
}

func TestMemoryLimiterDisabled(t *testing.T) {
	l := NewMemoryLimiter(0, time.Second)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("alice"))
	}
	assert.True(t, NewMemoryLimiter(1, time.Hour).Allow(""))
}

func TestRedisLimiterNilClientAllows(t *testing.T) {
	l := NewRedisLimiter(nil, 1, time.Second, "messages")
	assert.Nil(t, l)
	assert.True(t, l.Allow("alice"))
}

func TestMemoryLimiterDropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(fmt.Sprintf("user-%d", i)))
	}
	assert.False(t, l.Allow("user-0"))
	assert.Len(t, l.buckets, 100)

	now = now.Add(30 * time.Second)
	assert.False(t, l.Allow("user-0"), "half a window refills nothing")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("user-0"))
	assert.Len(t, l.buckets, 1, "idle buckets are swept")
	assert.False(t, l.Allow("user-0"))
}
