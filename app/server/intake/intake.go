// Package intake decides whether a waitlist signup is accepted: bot
// heuristics, address validation, per-client throttling and a single write.
package intake

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/Welluable/front-row/app/server/constants"
	"github.com/Welluable/front-row/app/server/errs"
	"github.com/Welluable/front-row/app/server/models"
	"github.com/Welluable/front-row/app/server/ratelimit"
	"go.uber.org/zap"
)

// 与 JavaScript 的 \s 一致的空白字符集合，RE2 的 \s 只包含 ASCII 空白
const notSpaceOrAt = `[^\s\x{0b}\x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}@]`

var emailRe = regexp.MustCompile(`^` + notSpaceOrAt + `+@` + notSpaceOrAt + `+\.` + notSpaceOrAt + `+$`)

// Payload 一次提交的内容，时间戳为客户端毫秒时间，0 表示未提供
type Payload struct {
	Email       string
	Honeypot    string
	Source      *string
	LoadedAt    int64
	SubmittedAt int64
	ClientIP    string
}

type SignupCreator interface {
	CreateSignup(ctx context.Context, signup *models.Signup) error
}

type Limiter interface {
	CheckAndConsume(key string) ratelimit.Decision
}

type Service struct {
	l         *zap.Logger
	store     SignupCreator
	limiter   Limiter
	stats     ratelimit.StatsStore
	minSubmit time.Duration
}

func NewService(l *zap.Logger, store SignupCreator, limiter Limiter, stats ratelimit.StatsStore, minSubmit time.Duration) *Service {
	return &Service{
		l:         l,
		store:     store,
		limiter:   limiter,
		stats:     stats,
		minSubmit: minSubmit,
	}
}

// NormalizeEmail 去掉首尾空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail 长度按 UTF-16 码元计算，与 JavaScript 的 length 一致
func ValidEmail(email string) bool {
	return utf16Len(email) <= constants.MaxEmailLength && emailRe.MatchString(email)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Fingerprint 客户端地址的单向 hash，作为限流 key 与入库字段
func Fingerprint(clientIP string) string {
	if clientIP == "" {
		clientIP = constants.UnknownClient
	}
	sum := sha256.Sum256([]byte(clientIP))
	return hex.EncodeToString(sum[:])
}

// Submit 按顺序检查，第一个失败的检查决定结果
func (s *Service) Submit(ctx context.Context, p Payload) error {
	err := s.submit(ctx, p)
	s.record(ctx, outcomeOf(err))
	return err
}

func (s *Service) submit(ctx context.Context, p Payload) error {
	// 蜜罐字段：真人看不到，填了就是机器人
	if p.Honeypot != "" {
		return errs.ErrInvalid
	}

	// 填写过快
	if p.LoadedAt != 0 && p.SubmittedAt != 0 && p.SubmittedAt-p.LoadedAt < s.minSubmit.Milliseconds() {
		return errs.ErrTooFast
	}

	email := NormalizeEmail(p.Email)
	if !ValidEmail(email) {
		return errs.ErrInvalidInput
	}

	// 限流
	ipHash := Fingerprint(p.ClientIP)
	if dec := s.limiter.CheckAndConsume(ipHash); !dec.Allowed {
		return &errs.RateLimitedError{RetryAfter: dec.RetryAfter}
	}

	// 保存
	if err := s.store.CreateSignup(ctx, &models.Signup{
		Email:  email,
		Source: p.Source,
		IPHash: ipHash,
	}); err != nil {
		if errors.Is(err, errs.ErrDuplicate) {
			return errs.ErrDuplicate
		}
		s.l.Error("failed to create signup", zap.Error(err))
		if errors.Is(err, errs.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}

	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return ratelimit.OutcomeAccepted
	case errors.Is(err, errs.ErrInvalid):
		return ratelimit.OutcomeInvalid
	case errors.Is(err, errs.ErrTooFast):
		return ratelimit.OutcomeTooFast
	case errors.Is(err, errs.ErrInvalidInput):
		return ratelimit.OutcomeInvalidInput
	case errors.Is(err, errs.ErrRateLimited):
		return ratelimit.OutcomeRateLimited
	case errors.Is(err, errs.ErrDuplicate):
		return ratelimit.OutcomeDuplicate
	default:
		return ratelimit.OutcomeStorageError
	}
}

func (s *Service) record(ctx context.Context, outcome string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Record(ctx, ratelimit.StatsEvent{Outcome: outcome, At: time.Now()}); err != nil {
		s.l.Warn("failed to record intake stats", zap.String("outcome", outcome), zap.Error(err))
	}
}
