package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigs(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

const validPublic = `listen_addr: ":9090"
log_level: "debug"
default_page_size: 10
max_page_size: 50
max_content_length: 500
max_username_length: 25
rate_limit_window: 60s
rate_limit_max_posts: 5
rate_limit_sweep_interval: 10s
meme_storage_path: "media/memes"
meme_max_size_bytes: 8388608
meme_default_limit: 50
token_stats:
  explorer_url: "https://example.test/api"
  token_address: "0xabc"
  trading_address: "0xdef"
  cache_ttl: 90s
`

const validPrivate = `moderation_secret: "s3cret"
ip_hash_pepper: "pepper"
pg:
  host: "localhost"
  port: 5432
  user: "u"
  password: "p"
  dbname: "d"
`

func TestMustLoad(t *testing.T) {
	dir := writeConfigs(t, validPublic, validPrivate)

	cfg := MustLoad(dir)

	if cfg.Public.ListenAddr != ":9090" {
		t.Errorf("unexpected listen_addr: %s", cfg.Public.ListenAddr)
	}
	if cfg.Public.RateLimitWindow.Std() != 60*time.Second {
		t.Errorf("rate_limit_window = %v, want 60s", cfg.Public.RateLimitWindow.Std())
	}
	if cfg.Public.TokenStats.CacheTTL.Std() != 90*time.Second {
		t.Errorf("cache_ttl = %v, want 90s", cfg.Public.TokenStats.CacheTTL.Std())
	}
	if cfg.ModerationSecret() != "s3cret" {
		t.Errorf("unexpected moderation secret: %s", cfg.ModerationSecret())
	}
	if cfg.Private.Pg.Port != 5432 {
		t.Errorf("unexpected pg port: %d", cfg.Private.Pg.Port)
	}
}

func TestMustLoad_MissingFilePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for missing config file, got none")
		}
	}()
	_ = MustLoad(t.TempDir())
}

func TestMustLoad_InvalidDurationPanics(t *testing.T) {
	dir := writeConfigs(t, "rate_limit_window: sixty\n", validPrivate)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for unparseable duration, got none")
		}
	}()
	_ = MustLoad(dir)
}

func TestMustLoad_EnvOverrides(t *testing.T) {
	dir := writeConfigs(t, validPublic, validPrivate)
	t.Setenv("MODERATION_SECRET", "from-env")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("PG_PORT", "6543")

	cfg := MustLoad(dir)

	if cfg.Private.ModerationSecret != "from-env" {
		t.Errorf("moderation_secret not overridden: %s", cfg.Private.ModerationSecret)
	}
	if cfg.Private.RedisAddr != "redis:6379" {
		t.Errorf("redis_addr not overridden: %s", cfg.Private.RedisAddr)
	}
	if cfg.Private.Pg.Host != "db.internal" || cfg.Private.Pg.Port != 6543 {
		t.Errorf("pg overrides not applied: %+v", cfg.Private.Pg)
	}
}
