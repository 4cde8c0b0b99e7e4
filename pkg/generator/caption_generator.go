package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/go-caption-kit/pkg/caption"
	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/prompts"
)

const (
	// DefaultMaxAttempts はパネル単位の修復で行う最大試行回数です。
	DefaultMaxAttempts = 5
	// DefaultTargetAge は対象年齢が未指定の場合の値です。
	DefaultTargetAge = "3-8"
)

// panelPositions はプロンプトに埋め込むグリッド上の位置です。
var panelPositions = map[domain.PanelID]string{
	domain.PanelA: "Top-Right (first)",
	domain.PanelB: "Top-Left",
	domain.PanelC: "Bottom-Right",
	domain.PanelD: "Bottom-Left",
}

// defaultScenes はシーンが空のパネルに使う汎用の説明です。
var defaultScenes = map[domain.PanelID]string{
	domain.PanelA: "Opening scene",
	domain.PanelB: "Action scene",
	domain.PanelC: "Reaction scene",
	domain.PanelD: "Resolution scene",
}

// CaptionRequest は 1 ページ分のキャプション生成要求です。
type CaptionRequest struct {
	PageID    string
	Scenes    [domain.PanelCount]domain.PanelScene
	TargetAge string
	Theme     string
}

// CaptionResult は生成結果と、どの経路で確定したかの記録です。
type CaptionResult struct {
	Captions     domain.PanelCaptions
	Validation   domain.ValidationResult
	BatchValid   bool
	Repaired     []domain.PanelID
	Placeholders []domain.PanelID
	RepairCalls  int
}

// CaptionGenerator は一括生成とパネル単位の修復でキャプションを確定させます。
type CaptionGenerator struct {
	client      TextGenerator
	prompts     prompts.PromptBuilder
	rules       caption.Rules
	limiter     *rate.Limiter
	maxAttempts int
}

// Option は CaptionGenerator の任意設定です。
type Option func(*CaptionGenerator)

// WithRateLimiter は修復呼び出しに共有のレートリミッタを設定します。
func WithRateLimiter(l *rate.Limiter) Option {
	return func(g *CaptionGenerator) { g.limiter = l }
}

// WithMaxAttempts はパネル単位の最大試行回数を設定します。
func WithMaxAttempts(n int) Option {
	return func(g *CaptionGenerator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithPromptBuilder は既定のテンプレート以外のビルダーを使う場合に指定します。
func WithPromptBuilder(pb prompts.PromptBuilder) Option {
	return func(g *CaptionGenerator) { g.prompts = pb }
}

// NewCaptionGenerator は CaptionGenerator を初期化します。
func NewCaptionGenerator(client TextGenerator, rules caption.Rules, opts ...Option) (*CaptionGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("client は必須です")
	}
	if err := rules.Check(); err != nil {
		return nil, fmt.Errorf("キャプション規則が不正です: %w", err)
	}

	g := &CaptionGenerator{
		client:      client,
		rules:       rules,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.prompts == nil {
		pb, err := prompts.NewCaptionPromptBuilder()
		if err != nil {
			return nil, fmt.Errorf("プロンプトビルダーの作成に失敗しました: %w", err)
		}
		g.prompts = pb
	}
	return g, nil
}

// Rules は使用中のキャプション規則を返します。
func (g *CaptionGenerator) Rules() caption.Rules {
	return g.rules
}

// Generate は 4 コマ分のキャプションを生成します。
// 検証や生成の失敗はプレースホルダで吸収し、エラーを返すのは ctx が終了した場合のみです。
func (g *CaptionGenerator) Generate(ctx context.Context, req CaptionRequest) (*CaptionResult, error) {
	logger := slog.With("page_id", req.PageID)
	startTime := time.Now()

	captions, err := g.generateBatch(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("一括生成に失敗したため全パネルを個別に生成します", "error", err)
	}

	captions = g.rules.NormalizeAll(captions)
	validation := g.rules.ValidateAll(captions)
	result := &CaptionResult{Captions: captions, Validation: validation}

	if err == nil && validation.Valid {
		result.BatchValid = true
		logger.Info("一括生成ですべてのキャプションが有効でした", "duration", time.Since(startTime).Round(time.Millisecond))
		return result, nil
	}

	failed := domain.ReadingOrder[:]
	if err == nil {
		failed = validation.FailedPanels()
		logger.Warn("検証に失敗したパネルを個別に再生成します", "panels", failed, "errors", validation.Errors)
	}

	if err := g.repairPanels(ctx, req, failed, result); err != nil {
		return nil, err
	}

	result.Validation = g.rules.ValidateAll(result.Captions)
	if !result.Validation.Valid {
		logger.Warn("再生成後も検証エラーが残っています", "errors", result.Validation.Errors)
	}
	logger.Info("キャプション生成が完了しました",
		"repaired", result.Repaired,
		"placeholders", result.Placeholders,
		"repair_calls", result.RepairCalls,
		"duration", time.Since(startTime).Round(time.Millisecond))
	return result, nil
}

// generateBatch は 4 コマ分を 1 回の構造化リクエストで生成します。
func (g *CaptionGenerator) generateBatch(ctx context.Context, req CaptionRequest) (domain.PanelCaptions, error) {
	prompt, err := g.prompts.Build(prompts.ModeBatch, g.templateData(req, domain.PanelA))
	if err != nil {
		return domain.PanelCaptions{}, err
	}
	raw, err := g.client.GenerateJSON(ctx, prompt, batchResponseSchema)
	if err != nil {
		return domain.PanelCaptions{}, fmt.Errorf("一括生成リクエストに失敗しました: %w", err)
	}
	return parseBatchResponse(raw)
}

// repairPanels は失敗したパネルを並列に個別生成します。
// 各パネルの結果は独立したスロットに書き込み、最後にまとめて反映します。
func (g *CaptionGenerator) repairPanels(ctx context.Context, req CaptionRequest, failed []domain.PanelID, result *CaptionResult) error {
	type outcome struct {
		text        string
		placeholder bool
	}
	outcomes := make([]outcome, len(failed))
	var calls atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	for i, id := range failed {
		eg.Go(func() error {
			text, ok, err := g.repairPanel(egCtx, req, id, &calls)
			if err != nil {
				return err
			}
			if !ok {
				text = g.rules.Normalize(caption.Placeholder(id))
			}
			outcomes[i] = outcome{text: text, placeholder: !ok}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	result.RepairCalls = int(calls.Load())
	for i, id := range failed {
		result.Captions.Set(id, outcomes[i].text)
		if outcomes[i].placeholder {
			result.Placeholders = append(result.Placeholders, id)
		} else {
			result.Repaired = append(result.Repaired, id)
		}
	}
	return nil
}

// repairPanel は 1 パネルを最大 maxAttempts 回まで生成し、最初に有効になった結果を返します。
// 有効な結果が得られなければ ok=false を返します。
func (g *CaptionGenerator) repairPanel(ctx context.Context, req CaptionRequest, id domain.PanelID, calls *atomic.Int64) (string, bool, error) {
	logger := slog.With("page_id", req.PageID, "panel", id)

	prompt, err := g.prompts.Build(prompts.ModeSingle, g.templateData(req, id))
	if err != nil {
		logger.Error("プロンプトの構築に失敗しました", "error", err)
		return "", false, nil
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", false, err
		}

		calls.Add(1)
		raw, err := g.client.GenerateText(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", false, ctx.Err()
			}
			logger.Warn("パネルの生成に失敗しました", "attempt", attempt, "error", err)
			if errors.Is(err, ErrFatal) {
				break
			}
			continue
		}

		text := g.rules.Normalize(cleanSingleResponse(raw))
		v := g.rules.Validate(text, id)
		if v.Valid {
			logger.Info("パネルのキャプションを修復しました", "attempt", attempt)
			return text, true, nil
		}
		logger.Warn("パネルのキャプションが検証に失敗しました", "attempt", attempt, "errors", v.Errors)
	}

	logger.Warn("再試行上限に達したためプレースホルダを使用します")
	return "", false, nil
}

func (g *CaptionGenerator) templateData(req CaptionRequest, target domain.PanelID) prompts.TemplateData {
	age := req.TargetAge
	if age == "" {
		age = DefaultTargetAge
	}

	data := prompts.TemplateData{
		PageID:     req.PageID,
		PanelID:    string(target),
		TargetAge:  age,
		Theme:      req.Theme,
		MaxLength:  g.rules.MaxLength,
		MinWords:   g.rules.MinWords,
		MaxWords:   g.rules.MaxWords,
		Connectors: caption.Connectors(),
	}
	scenes := make(map[domain.PanelID]string, domain.PanelCount)
	for _, sc := range req.Scenes {
		if sc.ID.Valid() {
			scenes[sc.ID] = sc.ScenePrompt
		}
	}
	for _, id := range domain.ReadingOrder {
		scene := scenes[id]
		if scene == "" {
			scene = defaultScenes[id]
		}
		if id == target {
			data.Scene = scene
		}
		data.Scenes = append(data.Scenes, prompts.SceneData{
			ID:       string(id),
			Position: panelPositions[id],
			Scene:    scene,
		})
	}
	return data
}
