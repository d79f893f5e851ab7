package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestLimiter(requests int, per time.Duration, burst int) (*ChatLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := NewChatLimiter(requests, per, burst)
	l.now = clock.now
	return l, clock
}

func TestChatLimiter_BurstThenRefill(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute, 2)

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1), "burst exhausted")

	clock.advance(20 * time.Second)
	assert.True(t, l.Allow(1), "one token refilled")
	assert.False(t, l.Allow(1))
}

func TestChatLimiter_ChatsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, 1)

	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2))
}

func TestChatLimiter_IdleChatsAreEvicted(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute, 1)

	l.Allow(1)
	l.Allow(2)
	assert.Equal(t, 2, l.Len())

	clock.advance(11 * time.Minute)
	l.Allow(3)
	assert.Equal(t, 1, l.Len())
}

func TestNewChatLimiter_InvalidArgs(t *testing.T) {
	l, _ := newTestLimiter(0, time.Minute, 0)
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
}
