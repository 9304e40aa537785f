package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SnapshotCache 统计/近期概览快照的 Redis 缓存。
// 快照是纯派生数据，TTL 短 + 写路径失效，允许短暂陈旧
type SnapshotCache struct {
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewSnapshotCache(kv KV, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SnapshotCache{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

// StatsKey 统计快照键（窗口 + 币种维度）
func StatsKey(startKey, endKey, currency string) string {
	return fmt.Sprintf("deskplanner:stats:%s:%s:%s", startKey, endKey, currency)
}

// HorizonKey 近期概览快照键（按扫描基准日）
func HorizonKey(todayKey string) string {
	return fmt.Sprintf("deskplanner:horizon:%s", todayKey)
}

// GetJSON 读取并反序列化快照，未命中返回 ErrMiss
func (c *SnapshotCache) GetJSON(ctx context.Context, key string, out any) error {
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// 坏数据当未命中处理，别让一条脏缓存卡死读路径
		c.logger.Warn("dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.kv.Del(ctx, key)
		return ErrMiss
	}
	return nil
}

// SetJSON 序列化并写入快照
func (c *SnapshotCache) SetJSON(ctx context.Context, key string, value any) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.kv.Set(ctx, key, string(jsonData), c.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Invalidate 预订写路径调用：清掉全部统计/概览快照。
// 失效失败只记日志不报错——TTL 会兜底
func (c *SnapshotCache) Invalidate(ctx context.Context) {
	for _, pattern := range []string{"deskplanner:stats:*", "deskplanner:horizon:*"} {
		keys, err := c.kv.ScanKeys(ctx, pattern)
		if err != nil {
			c.logger.Warn("cache invalidation scan failed", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		if err := c.kv.Del(ctx, keys...); err != nil && !errors.Is(err, ErrMiss) {
			c.logger.Warn("cache invalidation delete failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}
