package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/image/font/opentype"
	"golang.org/x/time/rate"

	"github.com/shouni/go-caption-kit/pkg/caption"
	"github.com/shouni/go-caption-kit/pkg/composer"
	"github.com/shouni/go-caption-kit/pkg/config"
	"github.com/shouni/go-caption-kit/pkg/generator"
	"github.com/shouni/go-caption-kit/pkg/prompts"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
)

// ErrCaptionUnavailable は API キーも TextGenerator も与えられていない場合のエラーです。
var ErrCaptionUnavailable = errors.New("caption generation requires GEMINI_API_KEY or a TextGenerator")

// ManagerArgs は Manager の初期化に必要な依存関係です。
// nil のフィールドは Config を基に既定の実装が作られます。
type ManagerArgs struct {
	Config     config.Config
	HTTPClient *http.Client
	// TextGenerator を指定すると Gemini クライアントの初期化を省略します。
	TextGenerator generator.TextGenerator
	PromptBuilder prompts.PromptBuilder
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg        config.Config
	rules      caption.Rules
	captionGen *generator.CaptionGenerator
	composer   *composer.Composer
}

// New は、設定を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	cfg := args.Config

	rules, err := caption.RulesByName(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("キャプション規則の選択に失敗しました: %w", err)
	}

	httpClient := args.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	var captionGen *generator.CaptionGenerator
	if args.TextGenerator != nil || cfg.GeminiAPIKey != "" {
		textGen, err := initializeTextGenerator(ctx, args.TextGenerator, cfg, httpClient)
		if err != nil {
			return nil, err
		}
		captionGen, err = buildCaptionGenerator(cfg, textGen, rules, args.PromptBuilder)
		if err != nil {
			return nil, err
		}
	} else {
		slog.Debug("API キーが未設定のためキャプション生成は無効です")
	}

	comp, err := buildComposer(cfg, httpClient)
	if err != nil {
		return nil, fmt.Errorf("画像合成エンジンの初期化に失敗しました: %w", err)
	}

	slog.Debug("ワークフローを初期化しました",
		"model", cfg.GeminiModel,
		"profile", rules.Name,
		"font", cfg.FontPath,
	)

	return &Manager{
		cfg:        cfg,
		rules:      rules,
		captionGen: captionGen,
		composer:   comp,
	}, nil
}

// Rules は選択されたキャプション規則を返します。
func (m *Manager) Rules() caption.Rules {
	return m.rules
}

// initializeTextGenerator は TextGenerator を初期化します。
// 引数として既存の実装が渡された場合はそれを返し、nil の場合は Gemini クライアントを新規作成します。
func initializeTextGenerator(ctx context.Context, textGen generator.TextGenerator, cfg config.Config, httpClient *http.Client) (generator.TextGenerator, error) {
	if textGen != nil {
		return textGen, nil
	}

	client, err := generator.NewGeminiClient(ctx, generator.GeminiConfig{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: cfg.Temperature,
		HTTPClient:  httpClient,
		Retry:       generator.DefaultRetryPolicy(),
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// buildCaptionGenerator は共有のレートリミッタ付きで CaptionGenerator を構築します。
func buildCaptionGenerator(cfg config.Config, textGen generator.TextGenerator, rules caption.Rules, pb prompts.PromptBuilder) (*generator.CaptionGenerator, error) {
	limit := rate.Inf
	if cfg.RateInterval > 0 {
		limit = rate.Every(cfg.RateInterval)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = config.DefaultRateBurst
	}

	opts := []generator.Option{
		generator.WithRateLimiter(rate.NewLimiter(limit, burst)),
		generator.WithMaxAttempts(cfg.MaxAttempts),
	}
	if pb != nil {
		opts = append(opts, generator.WithPromptBuilder(pb))
	}

	g, err := generator.NewCaptionGenerator(textGen, rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("CaptionGenerator の初期化に失敗しました: %w", err)
	}
	return g, nil
}

// buildComposer は画像キャッシュとフォントを設定した Composer を構築します。
func buildComposer(cfg config.Config, httpClient *http.Client) (*composer.Composer, error) {
	imgCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)

	opts := []composer.Option{
		composer.WithLoader(composer.NewImageLoader(httpClient, imgCache)),
		composer.WithLayout(composer.Layout{
			CaptionHeightRatio: cfg.CaptionHeightRatio,
			PaddingRatio:       cfg.PaddingRatio,
		}),
	}

	f, err := initializeFont(cfg.FontPath)
	if err != nil {
		return nil, err
	}
	if f != nil {
		opts = append(opts, composer.WithFont(f))
	}

	return composer.New(opts...)
}

// initializeFont は FontPath が指定されていればフォントを読み込みます。
// 未指定の場合は nil を返し、Composer の既定フォントを使います。
func initializeFont(path string) (*opentype.Font, error) {
	if path == "" {
		slog.Warn("CAPTION_FONT_PATH が未設定のため同梱フォントを使います。ヘブライ文字は表示されません")
		return nil, nil
	}
	f, err := composer.LoadFont(path)
	if err != nil {
		return nil, fmt.Errorf("フォントの読み込みに失敗しました (path: %s): %w", path, err)
	}
	return f, nil
}
