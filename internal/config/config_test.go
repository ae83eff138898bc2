package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
table: rules/orders.csv
watch: false
store:
  kind: redis
  redis:
    addr: localhost:6379
    prefix: "orders:"
    ttl: 24h
notify_timeout: 3s
listen: ":9090"
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rules/orders.csv", cfg.Table)
	assert.False(t, cfg.Watch)
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, ":9090", cfg.Listen)
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "table: t.csv\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Store.Kind = StoreRedis
	assert.Error(t, cfg.Validate(), "redis store needs an address")

	cfg.Store.Kind = StoreSQLite
	assert.Error(t, cfg.Validate(), "sqlite store needs a path")
	cfg.Store.SQLite.Path = "sessions.db"
	assert.NoError(t, cfg.Validate())

	cfg.Store.Kind = "etcd"
	assert.Error(t, cfg.Validate())
}

func TestResolveTokenPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "BOT_TOKEN=from-dotenv\n")
	writeFile(t, dir, "token.env", "from-token-file\n")

	tok, err := ResolveToken("explicit", dir)
	require.NoError(t, err)
	assert.Equal(t, "explicit", tok)

	t.Setenv(tokenEnvVar, "from-env")
	tok, err = ResolveToken("", dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)

	t.Setenv(tokenEnvVar, "")
	tok, err = ResolveToken("", dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", tok)
}

func TestResolveTokenFallbackFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "token.env", "# bot credentials\n123456:ABCDEF\n")

	t.Setenv(tokenEnvVar, "")
	tok, err := ResolveToken("", dir)
	require.NoError(t, err)
	assert.Equal(t, "123456:ABCDEF", tok)
}

func TestResolveTokenMissing(t *testing.T) {
	t.Setenv(tokenEnvVar, "")
	_, err := ResolveToken("", t.TempDir())
	assert.ErrorIs(t, err, ErrNoToken)
}
