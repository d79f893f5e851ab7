package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a chat may run another command.
type Limiter interface {
	Allow(chatID int64) bool
}

type chatEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ChatLimiter keeps one token bucket per chat in memory. Buckets idle for
// longer than idleTTL are dropped on the next sweep.
type ChatLimiter struct {
	mu      sync.Mutex
	chats   map[int64]*chatEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	lastSweep time.Time
}

// NewChatLimiter allows requests per window for each chat, with the given burst.
// Example: NewChatLimiter(3, time.Minute, 2) -> one command every 20s, two in a row.
func NewChatLimiter(requests int, per time.Duration, burst int) *ChatLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &ChatLimiter{
		chats:   make(map[int64]*chatEntry),
		limit:   rate.Every(per / time.Duration(requests)),
		burst:   burst,
		idleTTL: 10 * per,
		now:     time.Now,
	}
}

var _ Limiter = (*ChatLimiter)(nil)

func (l *ChatLimiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	entry, ok := l.chats[chatID]
	if !ok {
		entry = &chatEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.chats[chatID] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of tracked chats.
func (l *ChatLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.chats)
}

func (l *ChatLimiter) sweep(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for id, entry := range l.chats {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.chats, id)
		}
	}
}
