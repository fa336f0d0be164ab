package middleware

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ==================== KeyedLimiter 按键限流器 ====================

// MsgTooManyRequests 限流提示
const MsgTooManyRequests = "Too many requests, please try again later"

// KeyedLimiter 按键（IP + 路由）维护独立的令牌桶
type KeyedLimiter struct {
	limiters sync.Map // key -> *limiterEntry
	limit    rate.Limit
	burst    int
}

// limiterEntry 限流条目
type limiterEntry struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewKeyedLimiter 创建限流器
func NewKeyedLimiter(limit rate.Limit, burst int) *KeyedLimiter {
	return &KeyedLimiter{limit: limit, burst: burst}
}

// NewCredentialLimiter 凭证表单默认限流：每分钟 5 次，突发 5 次
func NewCredentialLimiter() *KeyedLimiter {
	return NewKeyedLimiter(rate.Every(time.Minute/5), 5)
}

// ==================== 限流检查 ====================

// Allow 消耗一个令牌，返回是否放行
func (l *KeyedLimiter) Allow(key string) bool {
	actual, _ := l.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)})
	entry := actual.(*limiterEntry)

	entry.mu.Lock()
	entry.lastSeen = time.Now()
	entry.mu.Unlock()

	return entry.limiter.Allow()
}

// Cleanup 清理闲置超过 idle 的条目，返回清理数量
func (l *KeyedLimiter) Cleanup(idle time.Duration) int {
	removed := 0
	cutoff := time.Now().Add(-idle)
	l.limiters.Range(func(key, value any) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		stale := entry.lastSeen.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// ==================== Gin 中间件 ====================

// CredentialLimiter 凭证表单限流
// 超限时以 303 回到 formPath 并携带错误提示，和表单失败的处理方式一致
func CredentialLimiter(l *KeyedLimiter, formPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		if l.Allow(key) {
			c.Next()
			return
		}

		zap.S().Warnf("[RateLimit] 请求过于频繁: key=%s", key)
		q := url.Values{}
		q.Set("error", MsgTooManyRequests)
		c.Redirect(http.StatusSeeOther, formPath+"?"+q.Encode())
		c.Abort()
	}
}
