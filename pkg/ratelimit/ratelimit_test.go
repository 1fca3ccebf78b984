package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindow(t *testing.T) {
	now := time.Now()
	limiter := NewFixedWindow(3, time.Minute)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("k"), "call %d should pass", i)
	}
	assert.False(t, limiter.Allow("k"))

	// A fresh window resets the counter.
	now = now.Add(time.Minute)
	assert.True(t, limiter.Allow("k"))
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	limiter := NewFixedWindow(1, time.Minute)

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
}

func TestUnlimited(t *testing.T) {
	limiter := Unlimited{}
	for i := 0; i < 1000; i++ {
		assert.True(t, limiter.Allow("k"))
	}
}
