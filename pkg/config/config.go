package config

import (
	"log/slog"
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultGeminiModel   = "gemini-3-flash-preview"
	DefaultProfile       = "standard"
	DefaultTemperature   = 0.7
	DefaultRateInterval  = 500 * time.Millisecond
	DefaultRateBurst     = 2
	DefaultMaxAttempts   = 5
	DefaultMinPageWords  = 16
	DefaultTargetAge     = "3-8"
	DefaultHTTPTimeout   = 60 * time.Second
	DefaultOutputDir     = "output"
	DefaultCaptionHeight = 0.20
	DefaultPadding       = 0.08
)

// 環境変数のキー
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGeminiModel  = "GEMINI_MODEL"
	EnvProfile      = "CAPTION_PROFILE"
	EnvFontPath     = "CAPTION_FONT_PATH"
	EnvRateInterval = "CAPTION_RATE_INTERVAL"
	EnvMaxAttempts  = "CAPTION_MAX_ATTEMPTS"
	EnvMinPageWords = "CAPTION_MIN_PAGE_WORDS"
)

// Config は Go Caption Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string
	GeminiModel  string
	Temperature  float32

	// --- Caption Settings ---
	Profile      string // standard | compact
	MaxAttempts  int    // パネル単位の再生成回数
	MinPageWords int    // ページ全体の最小語数
	TargetAge    string
	RateInterval time.Duration
	RateBurst    int

	// --- Composition Settings ---
	FontPath           string // 空の場合は同梱フォントを使用
	CaptionHeightRatio float64
	PaddingRatio       float64
	OutputDir          string

	// --- Timeout ---
	HTTPTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:        DefaultGeminiModel,
		Temperature:        DefaultTemperature,
		Profile:            DefaultProfile,
		MaxAttempts:        DefaultMaxAttempts,
		MinPageWords:       DefaultMinPageWords,
		TargetAge:          DefaultTargetAge,
		RateInterval:       DefaultRateInterval,
		RateBurst:          DefaultRateBurst,
		CaptionHeightRatio: DefaultCaptionHeight,
		PaddingRatio:       DefaultPadding,
		OutputDir:          DefaultOutputDir,
		HTTPTimeout:        DefaultHTTPTimeout,
	}
}

// LoadConfig は DefaultConfig を基に環境変数の値で上書きした設定を返します。
// 期間や正の整数として解釈できない値は既定値のままにします。
func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = envutil.GetEnv(EnvGeminiAPIKey, "")
	cfg.GeminiModel = envutil.GetEnv(EnvGeminiModel, cfg.GeminiModel)
	cfg.Profile = envutil.GetEnv(EnvProfile, cfg.Profile)
	cfg.FontPath = envutil.GetEnv(EnvFontPath, "")
	cfg.RateInterval = durationEnv(EnvRateInterval, cfg.RateInterval)
	cfg.MaxAttempts = intEnv(EnvMaxAttempts, cfg.MaxAttempts)
	cfg.MinPageWords = intEnv(EnvMinPageWords, cfg.MinPageWords)
	return cfg
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("環境変数の値を解釈できないため既定値を使います", "key", key, "value", raw, "default", def)
		return def
	}
	return d
}

func intEnv(key string, def int) int {
	n := envutil.GetEnvAsInt(key, def)
	if n <= 0 {
		slog.Warn("環境変数の値が正の整数ではないため既定値を使います", "key", key, "value", n, "default", def)
		return def
	}
	return n
}
