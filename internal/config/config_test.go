package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Step != 50 {
		t.Errorf("Step = %d, want 50", cfg.Step)
	}
	if cfg.MaxRange != 500 {
		t.Errorf("MaxRange = %d, want 500", cfg.MaxRange)
	}
	if cfg.DefaultRating != 1200 {
		t.Errorf("DefaultRating = %d, want 1200", cfg.DefaultRating)
	}
	if cfg.WSPort != 8080 {
		t.Errorf("WSPort = %d, want 8080", cfg.WSPort)
	}
	if cfg.StreamShardCount != 4 {
		t.Errorf("StreamShardCount = %d, want 4", cfg.StreamShardCount)
	}
	if !cfg.AcceptsTimeControl("blitz") {
		t.Error("expected blitz to be an accepted default time control")
	}
	if cfg.AcceptsTimeControl("correspondence") {
		t.Error("did not expect correspondence to be accepted by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STEP", "100")
	t.Setenv("MAX_RANGE", "750")
	t.Setenv("DEFAULT_RATING", "1500")
	t.Setenv("WS_PORT", "9090")
	t.Setenv("STREAM_SHARD_COUNT", "8")
	t.Setenv("TIME_CONTROLS", "bullet, blitz")
	t.Setenv("DATABASE_URL", "postgres://localhost/matchdb")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("IDENTITY_JWKS_BASE_URL", "https://issuer.example/.well-known")
	t.Setenv("STREAM_CLAIM_IDLE_MS", "15000")

	cfg := Load()

	if cfg.Step != 100 {
		t.Errorf("Step = %d, want 100", cfg.Step)
	}
	if cfg.MaxRange != 750 {
		t.Errorf("MaxRange = %d, want 750", cfg.MaxRange)
	}
	if cfg.DefaultRating != 1500 {
		t.Errorf("DefaultRating = %d, want 1500", cfg.DefaultRating)
	}
	if cfg.WSPort != 9090 {
		t.Errorf("WSPort = %d, want 9090", cfg.WSPort)
	}
	if cfg.StreamShardCount != 8 {
		t.Errorf("StreamShardCount = %d, want 8", cfg.StreamShardCount)
	}
	if len(cfg.TimeControls) != 2 || cfg.TimeControls[0] != "bullet" || cfg.TimeControls[1] != "blitz" {
		t.Errorf("TimeControls = %v, want [bullet blitz]", cfg.TimeControls)
	}
	if cfg.DatabaseURL != "postgres://localhost/matchdb" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.IdentityJWKSBaseURL != "https://issuer.example/.well-known" {
		t.Errorf("IdentityJWKSBaseURL = %q", cfg.IdentityJWKSBaseURL)
	}
	if cfg.StreamClaimIdleDuration.Milliseconds() != 15000 {
		t.Errorf("StreamClaimIdleDuration = %v, want 15s", cfg.StreamClaimIdleDuration)
	}
}

func TestLoadInvalidIntLeavesDefault(t *testing.T) {
	t.Setenv("STEP", "not-a-number")
	cfg := Load()
	if cfg.Step != 50 {
		t.Errorf("Step = %d, want default 50 when env value is invalid", cfg.Step)
	}
}
