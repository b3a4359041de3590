package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAndRestoreServerEnv saves original env vars and sets new ones for testing.
func setupAndRestoreServerEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()
	originalEnv := make(map[string]string)
	envKeys := []string{
		"SERVER_HOST",
		"SERVER_PORT",
		"SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT",
	}
	for _, key := range envKeys {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	for key, value := range envVars {
		os.Setenv(key, value)
	}
	return func() {
		for key := range envVars {
			os.Unsetenv(key)
		}
		for key, value := range originalEnv {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	}
}

func TestLoadServerConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		restore := setupAndRestoreServerEnv(t, nil)
		defer restore()

		cfg := LoadServerConfigFromEnv()
		assert.Empty(t, cfg.Host)
		assert.Equal(t, ":8080", cfg.Port)
		assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
		assert.Equal(t, 120*time.Second, cfg.IdleTimeout)
	})

	t.Run("env overrides", func(t *testing.T) {
		restore := setupAndRestoreServerEnv(t, map[string]string{
			"SERVER_HOST":          "127.0.0.1",
			"SERVER_PORT":          "3000",
			"SERVER_READ_TIMEOUT":  "15s",
			"SERVER_WRITE_TIMEOUT": "20s",
			"SERVER_IDLE_TIMEOUT":  "2m",
		})
		defer restore()

		cfg := LoadServerConfigFromEnv()
		assert.Equal(t, "127.0.0.1", cfg.Host)
		assert.Equal(t, "3000", cfg.Port)
		assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 20*time.Second, cfg.WriteTimeout)
		assert.Equal(t, 2*time.Minute, cfg.IdleTimeout)
	})
}

func TestServerConfig_GetAddress(t *testing.T) {
	cases := []struct {
		name string
		host string
		port string
		want string
	}{
		{"port only keeps the colon form", "", ":8080", ":8080"},
		{"host joins with bare port", "localhost", "8080", "localhost:8080"},
		{"host strips the leading colon", "10.0.0.5", ":9000", "10.0.0.5:9000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := ServerConfig{Host: tc.host, Port: tc.port}
			assert.Equal(t, tc.want, cfg.GetAddress())
		})
	}
}

func TestServerConfig_Validate(t *testing.T) {
	valid := ServerConfig{
		Port:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	}
	require.NoError(t, valid.Validate())

	t.Run("zero read timeout", func(t *testing.T) {
		cfg := valid
		cfg.ReadTimeout = 0
		assert.ErrorContains(t, cfg.Validate(), "ReadTimeout")
	})

	t.Run("negative write timeout", func(t *testing.T) {
		cfg := valid
		cfg.WriteTimeout = -time.Second
		assert.ErrorContains(t, cfg.Validate(), "WriteTimeout")
	})

	t.Run("zero idle timeout", func(t *testing.T) {
		cfg := valid
		cfg.IdleTimeout = 0
		assert.ErrorContains(t, cfg.Validate(), "IdleTimeout")
	})
}
