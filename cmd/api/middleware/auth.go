package middleware

import (
	"github.com/gin-gonic/gin"

	"model-eval/cmd/api/auth"
	"model-eval/internal/logger"
	"model-eval/trace"
)

// RequireAuth 는 요청 헤더의 bearer 토큰을 검증하고 사용자 id 를 컨텍스트에 저장한다.
func RequireAuth(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		userID, err := authn.Authenticate(token)
		if err != nil {
			fields := logger.Fields(trace.Fields(c.Request.Context()))
			fields["error"] = err.Error()
			logger.DebugWithFields("token rejected", fields)
			auth.AbortWithUnauthorized(c, err)
			return
		}

		auth.SetUserID(c, userID)
		c.Next()
	}
}
