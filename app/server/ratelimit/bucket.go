package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Buckets 按 key 缓存 token-bucket (x/time/rate)，空闲的 key 会被定期清理
type Buckets struct {
	mu           sync.Mutex
	entries      map[string]*bucketEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type BucketOption func(*Buckets)

func WithIdleTTL(d time.Duration) BucketOption {
	return func(b *Buckets) { b.idleTTL = d }
}

func WithBucketCleanupEvery(d time.Duration) BucketOption {
	return func(b *Buckets) { b.cleanupEvery = d }
}

func NewBuckets(rps float64, burst int, opts ...BucketOption) *Buckets {
	b := &Buckets{
		entries:      make(map[string]*bucketEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Buckets) get(key string) *rate.Limiter {
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	if ent, ok := b.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(b.rps, b.burst)
	b.entries[key] = &bucketEntry{lim: lim, lastSeen: now}
	return lim
}

// Allow 消耗 key 对应桶中的一个令牌；拒绝时给出下一个令牌可用的等待时间
func (b *Buckets) Allow(key string) Decision {
	lim := b.get(key)

	r := lim.Reserve()
	if !r.OK() {
		return Decision{Allowed: false, RetryAfter: time.Second}
	}
	delay := r.Delay()
	if delay == 0 {
		return Decision{Allowed: true}
	}

	// 不打算等待，归还令牌
	r.Cancel()
	return Decision{Allowed: false, RetryAfter: delay}
}

func (b *Buckets) Cleanup() {
	cutoff := time.Now().Add(-b.idleTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	for k, ent := range b.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(b.entries, k)
		}
	}
}

func (b *Buckets) StartJanitor(ctx context.Context) {
	startJanitor(ctx, b.cleanupEvery, b.Cleanup)
}
