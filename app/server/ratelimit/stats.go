package ratelimit

import (
	"context"
	"time"
)

// 提交结果标签
const (
	OutcomeAccepted     = "accepted"
	OutcomeInvalid      = "invalid"
	OutcomeTooFast      = "too_fast"
	OutcomeInvalidInput = "invalid_input"
	OutcomeRateLimited  = "rate_limited"
	OutcomeDuplicate    = "duplicate"
	OutcomeStorageError = "storage_error"
)

// StatsEvent 一次提交的处理结果，不包含客户端指纹，避免高基数
type StatsEvent struct {
	Outcome string
	At      time.Time
}

// StatsStore 统计为尽力而为：调用方只记录错误，不影响请求
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
	Snapshot(ctx context.Context) (map[string]int64, error)
}
