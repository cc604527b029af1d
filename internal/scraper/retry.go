package scraper

import (
	"crypto/rand"
	"math/big"
	"time"
)

// retryPolicy re-runs a whole task body a bounded number of extra times
// with jittered backoff between attempts.
type retryPolicy struct {
	extraAttempts int
	baseDelay     time.Duration
	maxDelay      time.Duration
}

func newRetryPolicy(extraAttempts int) retryPolicy {
	if extraAttempts < 0 {
		extraAttempts = 0
	}
	return retryPolicy{
		extraAttempts: extraAttempts,
		baseDelay:     2 * time.Second,
		maxDelay:      10 * time.Second,
	}
}

// attempts is the total number of times the task body may run.
func (p retryPolicy) attempts() int {
	return p.extraAttempts + 1
}

// backoff returns the jittered wait before the next attempt.
func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := p.baseDelay * time.Duration(attempt)
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	return delay/2 + randomJitter(delay/2)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
