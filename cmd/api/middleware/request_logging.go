package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"model-eval/cmd/api/auth"
	"model-eval/internal/logger"
	"model-eval/trace"
)

const maxBodyLog = 1024

// RequestLogging 은 요청 진입부터 응답까지 걸린 시간을 구조화 로그로 남긴다.
// RequestTrace 뒤에 등록해야 request_id 가 채워진다.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		// query_params 는 멀티 값 쿼리도 모두 보존하기 위해 map[string][]string 으로 기록한다.
		queryParams := map[string][]string{}
		for key, values := range req.URL.Query() {
			if len(values) > 0 {
				queryParams[key] = values
			}
		}

		var bodySnippet string
		if req.Body != nil && req.ContentLength != 0 &&
			(req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch) {
			if bodyBytes, err := io.ReadAll(req.Body); err == nil {
				if len(bodyBytes) > maxBodyLog {
					bodySnippet = string(bodyBytes[:maxBodyLog])
				} else {
					bodySnippet = string(bodyBytes)
				}
				// gin 핸들러에서 다시 읽을 수 있도록 Body 를 복원한다.
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		c.Next()

		fields := logger.Fields(trace.Fields(c.Request.Context()))
		fields["method"] = req.Method
		fields["path"] = req.URL.Path
		fields["query_params"] = queryParams
		fields["status"] = c.Writer.Status()
		fields["duration_ms"] = time.Since(start).Milliseconds()
		if userID := auth.UserID(c); userID != "" {
			fields["user_id"] = userID
		}
		if bodySnippet != "" {
			fields["body"] = bodySnippet
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.ErrorWithFields("completed request", fields)
		case status >= http.StatusBadRequest:
			logger.WarnWithFields("completed request", fields)
		default:
			logger.InfoWithFields("completed request", fields)
		}
	}
}
