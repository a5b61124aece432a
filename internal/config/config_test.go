package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	path := writeEnvFile(t, `
AUTH_TOKEN_KEY=`+testKey+`
SERVER_PORT=9090
KAFKA_BROKERS=k1:9092,k2:9092
ACCESS_TOKEN_DURATION=2h
CHECKOUT_VERIFY_TOTAL=true
RATE_LIMIT_RATE_PS=2.5
OUTBOX_POLL_INTERVAL=250ms
`)

	cf, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cf.ServerPort)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cf.KafkaBrokers)
	require.Equal(t, 2*time.Hour, cf.AccessTokenDuration)
	require.True(t, cf.CheckoutVerifyTotal)
	require.Equal(t, 2.5, cf.RateLimitRatePS)
	require.Equal(t, 250*time.Millisecond, cf.OutboxPollInterval)

	// 預設值
	require.Equal(t, "order-events", cf.KafkaOrderTopic)
	require.Equal(t, 24*time.Hour, cf.IdempotencyTTL)
	require.Equal(t, time.Minute, cf.IdempotencyPendingTTL)
	require.Equal(t, 100, cf.OutboxBatchSize)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeEnvFile(t, "AUTH_TOKEN_KEY="+testKey+"\nSERVER_PORT=9090\n")
	t.Setenv("SERVER_PORT", "7070")

	cf, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "7070", cf.ServerPort)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("AUTH_TOKEN_KEY", testKey)

	cf, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cf.AccessTokenDuration)
	require.Equal(t, "8080", cf.ServerPort)
}

func TestLoadConfig_RequiresSigningKey(t *testing.T) {
	path := writeEnvFile(t, "AUTH_TOKEN_KEY=short\n")

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigPath(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	require.Equal(t, DefaultConfigFile, ConfigPath())

	t.Setenv(ConfigFileEnv, "/etc/shopcore.env")
	require.Equal(t, "/etc/shopcore.env", ConfigPath())
}
