package instagram

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// BackoffPolicy bounds the throttling retry loop of the content fetch.
type BackoffPolicy struct {
	Retries      int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration // 0 means uncapped
}

func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Retries:      5,
		InitialDelay: time.Second,
		Multiplier:   2,
	}
}

// Next returns the delay following current.
func (p BackoffPolicy) Next(current time.Duration) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	next := time.Duration(float64(current) * mult)
	if p.MaxDelay > 0 && next > p.MaxDelay {
		next = p.MaxDelay
	}
	return next
}

// IsThrottled reports whether status warrants a backoff retry.
func IsThrottled(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusForbidden
}

// RetryAfter parses a Retry-After header given in seconds.
func RetryAfter(h http.Header) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
