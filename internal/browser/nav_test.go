package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/config"
	"github.com/eventoscl/crawler/internal/metrics"
)

func TestNewNavigatorTakesTimingsFromConfig(t *testing.T) {
	t.Parallel()
	metrics.Init()

	cfg := config.Config{}
	cfg.Scraping.MinDelayMs = 2000
	cfg.Scraping.MaxDelayMs = 5000
	cfg.Browser.NavTimeoutSec = 60
	cfg.Browser.NavRetries = 3
	cfg.Browser.ChallengeTimeoutSec = 30

	nav := NewNavigator(cfg, zap.NewNop())
	assert.Equal(t, 2*time.Second, nav.minDelay)
	assert.Equal(t, 5*time.Second, nav.maxDelay)
	assert.Equal(t, 60*time.Second, nav.navTimeout)
	assert.Equal(t, 3, nav.navRetries)
	assert.Equal(t, 30*time.Second, nav.challengeTimeout)
}

func TestDelayBetweenHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	nav := &Navigator{logger: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	nav.DelayBetween(ctx, time.Hour, 2*time.Hour)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRandDurationStaysInRange(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		d := randDuration(100*time.Millisecond, 200*time.Millisecond)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 200*time.Millisecond)
	}

	// Inverted or equal bounds degrade to the minimum.
	assert.Equal(t, time.Second, randDuration(time.Second, time.Second))
	assert.Equal(t, time.Second, randDuration(time.Second, time.Millisecond))
}

func TestRandIndexStaysInBounds(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		idx := randIndex(4)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 4)
	}
	assert.Equal(t, 0, randIndex(0))
	assert.Equal(t, 0, randIndex(1))
}
