package dao

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounterBucket(t *testing.T) {
	now := time.Date(2025, 3, 3, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		period     string
		wantBucket string
		wantTTL    bool
	}{
		{"hourly", "2025-03-03T15", true},
		{"daily", "2025-03-03", true},
		{"weekly", "2025-W10", true},
		{"monthly", "2025-03", true},
		{"", "all", false},
		{"fortnightly", "all", false},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			bucket, ttl := counterBucket(tt.period, now)
			assert.Equal(t, tt.wantBucket, bucket)
			if tt.wantTTL {
				assert.Greater(t, ttl, time.Duration(0))
			} else {
				assert.Zero(t, ttl)
			}
		})
	}
}

func TestUsageKey(t *testing.T) {
	assert.Equal(t, "usage:cred-1:request_count", usageKey("cred-1", "request_count"))
	assert.Equal(t, "usage:cred-1:request_count:10.0.0.1", usageKey("cred-1", "request_count:10.0.0.1"))
}
