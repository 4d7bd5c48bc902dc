// Package cache 缓存层抽象接口
//
// 为列表响应提供短 TTL 缓存（当前用于员工目录），由 Redis 实现；
// 未配置 Redis 时使用 NoOpCache 直接穿透。
package cache

import (
	"context"
	"time"
)

// Cache 字节缓存接口
type Cache interface {
	// Get 读取缓存，未命中时返回 (nil, false, nil)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set 写入缓存并设置过期时间
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix 删除指定前缀的全部键（写操作后的失效）
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// ============================================================================
// NoOpCache - 空操作实现（未配置 Redis 时使用）
// ============================================================================

// NoOpCache 不缓存任何内容
type NoOpCache struct{}

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NoOpCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) DeletePrefix(ctx context.Context, prefix string) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

var _ Cache = (*NoOpCache)(nil)
