package utils

import (
	"testing"
	"time"
)

func TestRedisConfig_Defaults(t *testing.T) {
	got := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if got.PoolSize != 20 {
		t.Fatalf("unexpected pool size: %d", got.PoolSize)
	}
	if got.DialTimeout != 3*time.Second {
		t.Fatalf("unexpected dial timeout: %v", got.DialTimeout)
	}
}

func TestConcurrencyScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if concurrencyAcquireScript == nil || concurrencyReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}
