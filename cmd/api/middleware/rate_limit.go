package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"model-eval/cmd/api/auth"
	"model-eval/internal/logger"
	"model-eval/ratelimit"
	"model-eval/trace"
)

const (
	headerLimit     = "X-RateLimit-Limit"
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
)

// RateLimit 은 사용자 id 기준으로 요청 수를 제한한다. RequireAuth 뒤에 등록한다.
// 제한 저장소 오류 시에는 요청을 통과시킨다.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := auth.UserID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			fields := logger.Fields(trace.Fields(c.Request.Context()))
			fields["error"] = err.Error()
			logger.WarnWithFields("rate limiter unavailable", fields)
			c.Next()
			return
		}

		if decision.Limit > 0 {
			c.Header(headerLimit, strconv.Itoa(decision.Limit))
			c.Header(headerRemaining, strconv.Itoa(decision.Remaining))
			if !decision.ResetAt.IsZero() {
				c.Header(headerReset, strconv.FormatInt(decision.ResetAt.Unix(), 10))
			}
		}

		if !decision.Allowed {
			retry := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests from this user, please try again later",
			})
			return
		}

		c.Next()
	}
}
