package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocLocker 单文档互斥锁
// 同一文档的并发 rebuild 会互相破坏 chunk 替换，必须串行化
type DocLocker interface {
	Acquire(ctx context.Context, documentID uint) (bool, error)
	Release(ctx context.Context, documentID uint)
}

// RedisLocker 基于 SET NX 的实现，TTL 兜底防止进程崩溃后死锁
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(d *Data) *RedisLocker {
	return &RedisLocker{rdb: d.Redis, ttl: 10 * time.Minute}
}

func (l *RedisLocker) key(documentID uint) string {
	return fmt.Sprintf("rebuild:lock:%d", documentID)
}

func (l *RedisLocker) Acquire(ctx context.Context, documentID uint) (bool, error) {
	return l.rdb.SetNX(ctx, l.key(documentID), "1", l.ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context, documentID uint) {
	l.rdb.Del(ctx, l.key(documentID))
}
