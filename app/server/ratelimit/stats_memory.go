package ratelimit

import (
	"context"
	"sync"
)

// MemoryStatsStore 进程内统计，未配置 Redis 时使用，重启即清零
type MemoryStatsStore struct {
	mu     sync.Mutex
	totals map[string]int64
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{totals: make(map[string]int64)}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[ev.Outcome]++
	return nil
}

func (s *MemoryStatsStore) Snapshot(context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out, nil
}
