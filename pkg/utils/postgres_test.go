package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns != 25 || got.MaxIdleConns != 25 {
		t.Fatalf("unexpected conn defaults: %+v", got)
	}
	if got.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout: %v", got.PingTimeout)
	}
}

func TestPostgresPoolConfig_ExplicitValuesKept(t *testing.T) {
	in := PostgresPoolConfig{MaxOpenConns: 3, ConnMaxLifetime: time.Minute}
	got := in.withDefaults()
	if got.MaxOpenConns != 3 {
		t.Fatalf("expected explicit MaxOpenConns kept, got %d", got.MaxOpenConns)
	}
	if got.ConnMaxLifetime != time.Minute {
		t.Fatalf("expected explicit lifetime kept, got %v", got.ConnMaxLifetime)
	}
}
