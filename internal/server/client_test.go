package server

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewClientAppliesRateLimitConfig(t *testing.T) {
	req := require.New(t)

	cfg := DefaultConfig()
	cfg.RatePerSecond = 2
	cfg.RateBurst = 5

	c := NewClient(nil, NewHub(discardLogger()), "test", cfg)
	req.Equal(rate.Limit(2), c.limiter.Limit())
	req.Equal(5, c.limiter.Burst())
	req.True(c.isOpen())
}

func TestClientLimiterDiscardBudget(t *testing.T) {
	req := require.New(t)

	cfg := DefaultConfig()
	cfg.RatePerSecond = 1
	cfg.RateBurst = 3

	c := NewClient(nil, NewHub(discardLogger()), "test", cfg)

	// The burst budget admits exactly RateBurst immediate frames; the
	// next one is discarded until a token refills.
	for i := 0; i < 3; i++ {
		req.True(c.limiter.Allow(), "frame %d should be within the burst", i)
	}
	req.False(c.limiter.Allow())
}
