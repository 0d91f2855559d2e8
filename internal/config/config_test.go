package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "account-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, NotifyLog, cfg.Notification.Driver)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout())
	assert.Equal(t, 32, cfg.Auth.CodeBytes)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("NOTIFY_DRIVER", "smtp")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("MONGO_TIMEOUT_SECONDS", "3")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("LOG_TO_FILE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, NotifySMTP, cfg.Notification.Driver)
	assert.Equal(t, 2525, cfg.Notification.SMTP.Port)
	assert.Equal(t, 3*time.Second, cfg.Mongo.Timeout())
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.True(t, cfg.Logger.LogToFile)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "x"}},
		{name: "unknown store", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "postgres without dsn", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "unknown notifier", env: map[string]string{"NOTIFY_DRIVER": "pigeon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	t.Setenv("SOME_BOOL", "maybe")

	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
	assert.True(t, getEnvAsBool("SOME_BOOL", true))
	assert.Equal(t, "fallback", getEnv("UNSET_KEY_FOR_TEST", "fallback"))
}
