package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-eval/trace"
)

func TestClientPropagatesTraceHeadersAndBody(t *testing.T) {
	var gotRequestID, gotSpanID, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(trace.HeaderRequestID)
		gotSpanID = r.Header.Get(trace.HeaderSpanID)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Config{})
	ctx := trace.WithRequestAndSpan(context.Background(), "req-abc", 0)

	for i := 0; i < 2; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/echo", strings.NewReader(`{"x":1}`))
		require.NoError(t, err)
		resp, err := c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, "req-abc", gotRequestID)
	assert.Equal(t, "2", gotSpanID)
	assert.Equal(t, `{"x":1}`, gotBody)
}

func TestClientLeavesCallerRequestUntouched(t *testing.T) {
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(trace.HeaderRequestID)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx := trace.WithRequestAndSpan(context.Background(), "req-xyz", 0)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := New(Config{}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-xyz", gotRequestID)
	assert.Empty(t, req.Header.Get(trace.HeaderRequestID))
	assert.Empty(t, req.Header.Get(trace.HeaderSpanID))
}
