package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("環境変数が未設定なら既定値", func(t *testing.T) {
		for _, key := range []string{EnvGeminiAPIKey, EnvGeminiModel, EnvProfile, EnvRateInterval, EnvMaxAttempts, EnvMinPageWords} {
			unsetEnv(t, key)
		}

		cfg := LoadConfig()
		assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
		assert.Equal(t, DefaultProfile, cfg.Profile)
		assert.Equal(t, DefaultRateInterval, cfg.RateInterval)
		assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
		assert.Equal(t, DefaultMinPageWords, cfg.MinPageWords)
	})

	t.Run("環境変数で上書きできる", func(t *testing.T) {
		t.Setenv(EnvGeminiAPIKey, "key")
		t.Setenv(EnvProfile, "compact")
		t.Setenv(EnvRateInterval, "2s")
		t.Setenv(EnvMaxAttempts, "3")
		t.Setenv(EnvMinPageWords, "20")
		t.Setenv(EnvFontPath, "/fonts/heebo.ttf")

		cfg := LoadConfig()
		assert.Equal(t, "key", cfg.GeminiAPIKey)
		assert.Equal(t, "compact", cfg.Profile)
		assert.Equal(t, 2*time.Second, cfg.RateInterval)
		assert.Equal(t, 3, cfg.MaxAttempts)
		assert.Equal(t, 20, cfg.MinPageWords)
		assert.Equal(t, "/fonts/heebo.ttf", cfg.FontPath)
	})

	t.Run("不正な値は既定値のまま", func(t *testing.T) {
		t.Setenv(EnvRateInterval, "fast")
		t.Setenv(EnvMaxAttempts, "-1")
		t.Setenv(EnvMinPageWords, "many")

		cfg := LoadConfig()
		assert.Equal(t, DefaultRateInterval, cfg.RateInterval)
		assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
		assert.Equal(t, DefaultMinPageWords, cfg.MinPageWords)
	})

	t.Run("整数の設定は正の整数だけを受け付ける", func(t *testing.T) {
		tests := []struct {
			name  string
			value string
		}{
			{"数値でない", "abc"},
			{"負数", "-3"},
			{"ゼロ", "0"},
			{"小数", "2.5"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Setenv(EnvMaxAttempts, tt.value)
				t.Setenv(EnvMinPageWords, tt.value)

				cfg := LoadConfig()
				assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
				assert.Equal(t, DefaultMinPageWords, cfg.MinPageWords)
			})
		}
	})
}

// unsetEnv はテスト終了時に元の値へ戻しつつ key を未設定にします。
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}
