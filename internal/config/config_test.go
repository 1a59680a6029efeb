package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "API_TIMEOUT", "AUDIT_WORKERS", "API_TOKEN"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 4, cfg.AuditWorkers)
	assert.Empty(t, cfg.APIToken)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("AUDIT_WORKERS", "-2")
	t.Setenv("API_BASE_URL", "http://api:9000")

	cfg := Load()
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 4, cfg.AuditWorkers)
	assert.Equal(t, "http://api:9000", cfg.APIBaseURL)
}
