// Package ratelimit holds the process-local limiters used by the HTTP layer:
// a fixed-window counter for signup intake and per-key token buckets for the
// admin endpoints, plus best-effort decision statistics.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

type Decision struct {
	Allowed bool
	// 被拒绝时距离窗口重置的时间
	RetryAfter time.Duration
}

// RetryAfterSeconds 向上取整为秒，用于 Retry-After
func (d Decision) RetryAfterSeconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow 固定窗口计数器：窗口到期后整体重置，而不是滑动。
// 窗口边界前后可能出现 2×limit 的突发，这是有意接受的。
type FixedWindow struct {
	mu      sync.Mutex
	windows map[string]*window

	limit        int
	length       time.Duration
	now          func() time.Time
	cleanupEvery time.Duration
}

type WindowOption func(*FixedWindow)

func WithClock(now func() time.Time) WindowOption {
	return func(w *FixedWindow) { w.now = now }
}

func WithWindowCleanupEvery(d time.Duration) WindowOption {
	return func(w *FixedWindow) { w.cleanupEvery = d }
}

func NewFixedWindow(limit int, length time.Duration, opts ...WindowOption) *FixedWindow {
	w := &FixedWindow{
		windows:      make(map[string]*window),
		limit:        limit,
		length:       length,
		now:          time.Now,
		cleanupEvery: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *FixedWindow) Limit() int             { return w.limit }
func (w *FixedWindow) Window() time.Duration { return w.length }

// CheckAndConsume 检查并消耗一次配额，整个过程在同一把锁内完成
func (w *FixedWindow) CheckAndConsume(key string) Decision {
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	win, ok := w.windows[key]
	if !ok || !now.Before(win.resetAt) {
		// 首次出现或窗口已过期：开新窗口
		w.windows[key] = &window{count: 1, resetAt: now.Add(w.length)}
		return Decision{Allowed: true}
	}

	if win.count < w.limit {
		win.count++
		return Decision{Allowed: true}
	}

	return Decision{Allowed: false, RetryAfter: win.resetAt.Sub(now)}
}

// Cleanup 删除已过期的窗口，过期窗口本来就等同于不存在
func (w *FixedWindow) Cleanup() {
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	for k, win := range w.windows {
		if !now.Before(win.resetAt) {
			delete(w.windows, k)
		}
	}
}

// Len 当前保存的窗口数量
func (w *FixedWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.windows)
}

// StartJanitor 定期清理过期窗口，取消 ctx 即停止
func (w *FixedWindow) StartJanitor(ctx context.Context) {
	startJanitor(ctx, w.cleanupEvery, w.Cleanup)
}

func startJanitor(ctx context.Context, every time.Duration, cleanup func()) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				cleanup()
			}
		}
	}()
}
