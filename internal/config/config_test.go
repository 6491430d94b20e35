package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SHOPIFY_API_VERSION", "")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "2024-04", cfg.ShopifyAPIVersion)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("BREAKER_MAX_FAILURES", "2")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, uint32(2), cfg.BreakerMaxFailures)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}

func TestGetEnvUint32_InvalidFallsBack(t *testing.T) {
	for _, v := range []string{"nope", "-1", "0", "4294967296"} {
		t.Setenv("SOME_UINT", v)
		assert.Equal(t, uint32(4), getEnvUint32("SOME_UINT", 4), v)
	}

	t.Setenv("SOME_UINT", " 7 ")
	assert.Equal(t, uint32(7), getEnvUint32("SOME_UINT", 4))
}

func TestLoad_NegativeBreakerThresholdUsesDefault(t *testing.T) {
	t.Setenv("BREAKER_MAX_FAILURES", "-3")
	assert.Equal(t, uint32(5), Load().BreakerMaxFailures)
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_DUR", "ten")
	assert.Equal(t, time.Second, getEnvDuration("SOME_DUR", time.Second))
}
