package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{Backend: BackendBadger, DataPath: "/some/path"},
		Server:  ServerConfig{Host: "127.0.0.1", Port: "8787", RateLimitRPS: 20, RateLimitBurst: 40},
		Chat:    ChatConfig{CurrentUserID: "current-user", AutoReplyDelay: time.Second},
	}
}

// noEnvFile points Load at a .env file that does not exist.
func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Storage(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		path    string
		valid   bool
	}{
		{"badger with path", BackendBadger, "/data", true},
		{"sqlite with path", BackendSQLite, "/data", true},
		{"memory without path", BackendMemory, "", true},
		{"badger without path", BackendBadger, "", false},
		{"unknown backend", "redis", "/data", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Storage = StorageConfig{Backend: tt.backend, DataPath: tt.path}

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = "70000"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Chat.AutoReplyDelay = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Chat.CurrentUserID = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.RateLimitBurst = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logger.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_PATH", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("AUTO_REPLY_DELAY", "")
	t.Setenv("CURRENT_USER_ID", "")

	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.True(t, filepath.IsAbs(cfg.Storage.DataPath))
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Addr())
	assert.Equal(t, time.Second, cfg.Chat.AutoReplyDelay)
	assert.Equal(t, "current-user", cfg.Chat.CurrentUserID)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("AUTO_REPLY_DELAY", "5s")
	t.Setenv("STORAGE_BACKEND", "sqlite")

	cfg, err := Load([]string{noEnvFile(t), "-auto-reply-delay=250ms", "-storage=memory", "-data-path="})
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Chat.AutoReplyDelay)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CURRENT_USER_ID=me\nCORS_ORIGINS=http://a, http://b\n"), 0o644))

	t.Setenv("CURRENT_USER_ID", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load([]string{"-env-file=" + envFile})
	require.NoError(t, err)

	assert.Equal(t, "me", cfg.Chat.CurrentUserID)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load([]string{noEnvFile(t), "-auto-reply-delay=soon"})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/roster", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "roster"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("relative/path", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, got, "relative/path")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `# Test env file
ENV=staging
LOG_LEVEL=debug

# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
  KEY_WITH_SPACES  =  value with spaces  
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	for _, k := range []string{"ENV", "LOG_LEVEL", "QUOTED_VALUE", "SINGLE_QUOTED", "KEY_WITH_SPACES"} {
		t.Setenv(k, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
	assert.Equal(t, "value with spaces", os.Getenv("KEY_WITH_SPACES"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALID_KEY=valid_value\nINVALID LINE WITHOUT EQUALS\n"), 0o644))

	t.Setenv("VALID_KEY", "")
	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}
