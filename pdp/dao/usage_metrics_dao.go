package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	logger "github.com/open-warden/warden/api/logging"
)

// usage sorted sets are kept for a day past the largest practical window
const usageRetention = 25 * time.Hour

// UsageMetricsDAO tracks per-credential usage in Redis sorted sets keyed by
// metric type. Each recorded event is a timestamped member; window queries
// count members newer than the window start.
type UsageMetricsDAO struct {
	Client *redis.Client
}

func NewUsageMetricsDAO(client *redis.Client) *UsageMetricsDAO {
	return &UsageMetricsDAO{Client: client}
}

func usageKey(credentialID, metricType string) string {
	return fmt.Sprintf("usage:%s:%s", credentialID, metricType)
}

// RecordUsage appends one usage event for a credential and metric type.
func (dao *UsageMetricsDAO) RecordUsage(ctx context.Context, credentialID, metricType string) error {
	now := time.Now().UnixNano()
	key := usageKey(credentialID, metricType)

	pipe := dao.Client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-usageRetention.Nanoseconds()))
	pipe.Expire(ctx, key, usageRetention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// GetUsageMetrics counts usage events for a credential and metric type inside
// the trailing window.
func (dao *UsageMetricsDAO) GetUsageMetrics(ctx context.Context, credentialID, metricType string, timeWindowSeconds int) (float64, error) {
	now := time.Now().UnixNano()
	windowStart := now - (time.Duration(timeWindowSeconds) * time.Second).Nanoseconds()
	key := usageKey(credentialID, metricType)

	count, err := dao.Client.ZCount(ctx, key, fmt.Sprintf("%d", windowStart), fmt.Sprintf("%d", now)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count usage events: %w", err)
	}

	logger.Debug("Usage metrics lookup",
		zap.String("key", key),
		zap.Int("windowSeconds", timeWindowSeconds),
		zap.Int64("count", count))
	return float64(count), nil
}

// PolicyCounterDAO tracks per-policy use counts in Redis with period-scoped
// keys, so a reset period rolls the count over without explicit cleanup.
type PolicyCounterDAO struct {
	Client *redis.Client
}

func NewPolicyCounterDAO(client *redis.Client) *PolicyCounterDAO {
	return &PolicyCounterDAO{Client: client}
}

// Increment bumps the use count for a policy and returns the count of uses
// before this one. Counts reset per calendar bucket of the reset period; an
// unrecognized or empty period never resets.
func (dao *PolicyCounterDAO) Increment(ctx context.Context, policyID, resetPeriod string) (int64, error) {
	bucket, ttl := counterBucket(resetPeriod, time.Now().UTC())
	key := fmt.Sprintf("policycount:%s:%s", policyID, bucket)

	count, err := dao.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment policy counter: %w", err)
	}
	if count == 1 && ttl > 0 {
		if err := dao.Client.Expire(ctx, key, ttl).Err(); err != nil {
			logger.Warn("Failed to set policy counter expiry",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	return count - 1, nil
}

func counterBucket(resetPeriod string, now time.Time) (string, time.Duration) {
	switch resetPeriod {
	case "hourly":
		return now.Format("2006-01-02T15"), 2 * time.Hour
	case "daily":
		return now.Format("2006-01-02"), 48 * time.Hour
	case "weekly":
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), 8 * 24 * time.Hour
	case "monthly":
		return now.Format("2006-01"), 32 * 24 * time.Hour
	default:
		return "all", 0
	}
}
