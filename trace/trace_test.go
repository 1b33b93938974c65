package trace

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIDIsUniqueHex(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "-")
}

func TestNextSpanIDIncrementsWithinRequest(t *testing.T) {
	ctx := WithRequestAndSpan(context.Background(), "req-1", 0)
	assert.Equal(t, "0", CurrentSpanID(ctx))

	reqID, span := NextSpanID(ctx)
	assert.Equal(t, "req-1", reqID)
	assert.Equal(t, "1", span)

	_, span = NextSpanID(ctx)
	assert.Equal(t, "2", span)
	assert.Equal(t, "2", CurrentSpanID(ctx))
}

func TestNextSpanIDConcurrent(t *testing.T) {
	ctx := WithRequestAndSpan(context.Background(), "req-2", 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			NextSpanID(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, "50", CurrentSpanID(ctx))
}

func TestNextSpanIDWithoutTraceContext(t *testing.T) {
	reqID, span := NextSpanID(context.Background())
	assert.NotEmpty(t, reqID)
	assert.Equal(t, "1", span)
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.Equal(t, "0", CurrentSpanID(context.Background()))
}
