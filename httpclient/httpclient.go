package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"model-eval/internal/logger"
	"model-eval/trace"
)

const maxBodyLog = 1024

// Config는 HTTP 클라이언트 공통 설정을 캡슐화한다.
// Transport가 nil이면 http.DefaultTransport를 사용한다.
type Config struct {
	Timeout   time.Duration
	Transport http.RoundTripper
}

// loggingRoundTripper는 모든 아웃바운드 HTTP 호출에 대해 공통 로깅과
// X-Request-Id 헤더 트레이싱을 수행한다.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// 호출자의 요청은 수정하지 않는다.
	req = req.Clone(req.Context())
	requestID, spanID := trace.NextSpanID(req.Context())
	req.Header.Set(trace.HeaderRequestID, requestID)
	req.Header.Set(trace.HeaderSpanID, spanID)

	// 바디 스니펫을 로깅하기 위해 바디를 한 번 읽고 복원한다.
	var bodySnippet string
	if req.Body != nil && req.GetBody == nil {
		if bodyBytes, err := io.ReadAll(req.Body); err == nil {
			bodySnippet = snippet(bodyBytes)
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	} else if req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			bodyBytes, _ := io.ReadAll(io.LimitReader(rc, maxBodyLog))
			_ = rc.Close()
			bodySnippet = snippet(bodyBytes)
		}
	}

	fields := logger.Fields{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"request_id": requestID,
		"span_id":    spanID,
	}
	if bodySnippet != "" {
		fields["body"] = bodySnippet
	}

	resp, err := l.inner.RoundTrip(req)
	fields["duration"] = time.Since(start).String()
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	logger.DebugWithFields("httpclient request success", fields)
	return resp, nil
}

func snippet(b []byte) string {
	if len(b) > maxBodyLog {
		b = b[:maxBodyLog]
	}
	return string(b)
}

// New는 주어진 설정으로 http.Client를 생성한다.
// Timeout이 0이면 기본값 10초를 사용한다.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: transport},
	}
}

// NewDefault는 공통 기본 설정(Timeout 10초)을 사용하는 http.Client를 생성한다.
func NewDefault() *http.Client {
	return New(Config{})
}
