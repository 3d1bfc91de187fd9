package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProductionConfig {
	return &ProductionConfig{
		Database: DatabaseConfig{Host: "db", Port: 5432, Name: "usbest", User: "usbest", Password: "secret"},
		Server:   ServerConfig{Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second},
		JWT: JWTConfig{
			SecretKey:       "0123456789abcdef0123456789abcdef",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
			Issuer:          "usbest",
			Audience:        "usbest-api",
			Algorithm:       "HS256",
		},
		Logging: LoggingConfig{Level: "info", Output: "stdout"},
		Cache:   CacheConfig{Enabled: true, Provider: "redis", RedisURL: "redis://localhost:6379"},
		Storage: StorageConfig{Endpoint: "localhost:9000", Bucket: "ugc", UploadURLTTL: 15 * time.Minute},
		Reward:  RewardConfig{Type: "coupon", CommentValue: "COMMENT_ADOPTION_REWARD", UGCValue: "UGC_ADOPTION_REWARD"},
	}
}

func TestValidateProductionConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProductionConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*ProductionConfig) {}},
		{name: "missing db password", mutate: func(c *ProductionConfig) { c.Database.Password = "" }, wantErr: "DB_PASSWORD is required"},
		{name: "short jwt secret", mutate: func(c *ProductionConfig) { c.JWT.SecretKey = "short" }, wantErr: "at least 32 characters"},
		{name: "bad log level", mutate: func(c *ProductionConfig) { c.Logging.Level = "trace" }, wantErr: "LOG_LEVEL"},
		{name: "file log without path", mutate: func(c *ProductionConfig) { c.Logging.Output = "file" }, wantErr: "LOG_FILE_PATH"},
		{name: "tls without cert", mutate: func(c *ProductionConfig) { c.Security.TLSEnabled = true }, wantErr: "TLS_CERT_FILE"},
		{name: "missing bucket", mutate: func(c *ProductionConfig) { c.Storage.Bucket = "" }, wantErr: "STORAGE_BUCKET"},
		{name: "closer without interval", mutate: func(c *ProductionConfig) { c.Scheduler.CampaignCloserEnabled = true }, wantErr: "SCHEDULER_CAMPAIGN_CLOSER_INTERVAL"},
		{name: "rsa keys with hmac algorithm", mutate: func(c *ProductionConfig) { c.JWT.UseRSAKeys = true }, wantErr: "JWT_ALGORITHM must be RS256"},
		{name: "unsupported algorithm", mutate: func(c *ProductionConfig) { c.JWT.Algorithm = "none" }, wantErr: "JWT_ALGORITHM must be HS256"},
		{name: "trusted proxy cidr", mutate: func(c *ProductionConfig) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "127.0.0.1"} }},
		{name: "malformed trusted proxy", mutate: func(c *ProductionConfig) { c.Server.TrustedProxies = []string{"proxy.local"} }, wantErr: "SERVER_TRUSTED_PROXIES"},
		{name: "unknown reward type", mutate: func(c *ProductionConfig) { c.Reward.Type = "cash" }, wantErr: "REWARD_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateProductionConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateProductionConfigCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	cfg.Storage.Endpoint = ""

	err := ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST is required")
	assert.Contains(t, err.Error(), "STORAGE_ENDPOINT is required")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("USBEST_TEST_INT", "42")
	t.Setenv("USBEST_TEST_BAD_INT", "forty-two")
	t.Setenv("USBEST_TEST_DURATION", "90s")
	t.Setenv("USBEST_TEST_SLICE", " a, b ,,c ")

	assert.Equal(t, 42, getEnvInt("USBEST_TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("USBEST_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, getEnvDuration("USBEST_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, getEnvStringSlice("USBEST_TEST_SLICE", nil))
	assert.Equal(t, "fallback", getEnvString("USBEST_TEST_UNSET", "fallback"))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("USBEST_FROM_FILE=file\nUSBEST_PRESET=file\n"), 0o600))

	t.Setenv("USBEST_PRESET", "env")
	t.Setenv("USBEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("USBEST_FROM_FILE"))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "file", os.Getenv("USBEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("USBEST_PRESET"))

	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
