package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithServiceNameAddsEnvValue(t *testing.T) {
	t.Setenv("SERVICE_NAME", "model-eval-api")

	fields := withServiceName(nil)
	assert.Equal(t, "model-eval-api", fields["service_name"])

	fields = withServiceName(Fields{"service_name": "custom"})
	assert.Equal(t, "custom", fields["service_name"])
}

func TestInitPrefersEnvLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	t.Setenv("LOG_LEVEL", "DEBUG")
	Init("error")
	assert.NotNil(t, Log)

	// 필드 헬퍼는 어떤 레벨에서도 패닉 없이 동작해야 한다.
	assert.NotPanics(t, func() {
		DebugWithFields("debug", Fields{"k": 1})
		WarnWithFields("warn", nil)
	})
}
