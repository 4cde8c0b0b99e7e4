package runner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-caption-kit/pkg/caption"
	"github.com/shouni/go-caption-kit/pkg/config"
	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/generator"
)

// 5 語ずつのキャプション。standard 規則で有効、合計 20 語。
var generated = domain.PanelCaptions{
	A: "הילד קם בבוקר עם חיוך",
	B: "הוא אוכל ארוחת בוקר טעימה",
	C: "אחר כך הוא משחק בכדור",
	D: "בערב הילד הולך לישון מוקדם",
}

// fakeService は CaptionService のテスト用実装です。
type fakeService struct {
	rules    caption.Rules
	results  []domain.PanelCaptions
	err      error
	requests []generator.CaptionRequest
}

func (f *fakeService) Rules() caption.Rules { return f.rules }

func (f *fakeService) Generate(ctx context.Context, req generator.CaptionRequest) (*generator.CaptionResult, error) {
	f.requests = append(f.requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	i := len(f.requests) - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return &generator.CaptionResult{Captions: f.results[i]}, nil
}

func draftPage(a, b, c, d string) *domain.PageRecord {
	return &domain.PageRecord{
		ID:    "page-1",
		Theme: "morning",
		Panels: []domain.PanelDraft{
			{ID: domain.PanelA, ScenePrompt: "boy wakes up", Caption: a},
			{ID: domain.PanelB, ScenePrompt: "boy eats", Caption: b},
			{ID: domain.PanelC, ScenePrompt: "boy plays", Caption: c},
			{ID: domain.PanelD, ScenePrompt: "boy sleeps", Caption: d},
		},
	}
}

func TestCaptionRunner_Run(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("保存済みのキャプションは再生成しない", func(t *testing.T) {
		svc := &fakeService{rules: caption.StandardRules, results: []domain.PanelCaptions{generated}}
		persisted := domain.PanelCaptions{A: "א", B: "ב", C: "ג", D: "ד"}
		page := &domain.PageRecord{ID: "p", Captions: &persisted, Text: "ignored"}

		got, err := NewCaptionRunner(cfg, svc).Run(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, persisted, got)
		assert.Empty(t, svc.requests)
	})

	t.Run("有効な下書きは正規化して採用する", func(t *testing.T) {
		svc := &fakeService{rules: caption.StandardRules, results: []domain.PanelCaptions{generated}}
		page := draftPage("  הילד קם בבוקר   עם חיוך ", generated.B, generated.C, generated.D)

		got, err := NewCaptionRunner(cfg, svc).Run(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, generated, got)
		assert.Empty(t, svc.requests)
	})

	t.Run("不正な下書きはパネルのシーンで再生成する", func(t *testing.T) {
		svc := &fakeService{rules: caption.StandardRules, results: []domain.PanelCaptions{generated}}
		page := draftPage("The boy wakes up early today", generated.B, generated.C, generated.D)

		got, err := NewCaptionRunner(cfg, svc).Run(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, generated, got)
		require.Len(t, svc.requests, 1)
		req := svc.requests[0]
		assert.Equal(t, "page-1", req.PageID)
		assert.Equal(t, "boy eats", req.Scenes[1].ScenePrompt)
		assert.Equal(t, domain.PanelB, req.Scenes[1].ID)
		assert.Equal(t, config.DefaultTargetAge, req.TargetAge)
	})

	t.Run("再生成に失敗した場合は固定キャプション", func(t *testing.T) {
		svc := &fakeService{rules: caption.StandardRules, err: errors.New("boom")}
		page := draftPage("", "", "", "")

		got, err := NewCaptionRunner(cfg, svc).Run(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, caption.FallbackSet(), got)
	})

	t.Run("語数不足は 1 回だけ再生成して満たせば採用", func(t *testing.T) {
		short := domain.PanelCaptions{A: "הילד קם מהמיטה", B: "הוא אוכל לחם", C: "הוא משחק בחוץ", D: "הילד הולך לישון"}
		svc := &fakeService{rules: caption.CompactRules, results: []domain.PanelCaptions{generated}}
		page := draftPage(short.A, short.B, short.C, short.D)

		got, err := NewCaptionRunner(cfg, svc).Run(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, generated, got)
		assert.Len(t, svc.requests, 1)
	})

	t.Run("再生成後も語数不足なら詳細な固定キャプション", func(t *testing.T) {
		short := domain.PanelCaptions{A: "הילד קם מהמיטה", B: "הוא אוכל לחם", C: "הוא משחק בחוץ", D: "הילד הולך לישון"}
		svc := &fakeService{rules: caption.CompactRules, results: []domain.PanelCaptions{short}}
		page := draftPage(short.A, short.B, short.C, short.D)

		got, err := NewCaptionRunner(cfg, svc).Run(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, caption.VerboseFallbackSet(), got)
		assert.Len(t, svc.requests, 1)
	})

	t.Run("パネルがない場合は画像プロンプトからシーンを抽出する", func(t *testing.T) {
		svc := &fakeService{rules: caption.StandardRules, results: []domain.PanelCaptions{generated}}
		page := &domain.PageRecord{
			ID:          "legacy",
			Text:        "הילד קם בבוקר.",
			ImagePrompt: "Panel 1: boy wakes. Panel 2: boy eats. Panel 3: boy plays. Panel 4: boy sleeps.",
			TargetAge:   "4-6",
		}

		got, err := NewCaptionRunner(cfg, svc).Run(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, generated, got)
		require.Len(t, svc.requests, 1)
		assert.Equal(t, "boy wakes", svc.requests[0].Scenes[0].ScenePrompt)
		assert.Equal(t, "boy sleeps", svc.requests[0].Scenes[3].ScenePrompt)
		assert.Equal(t, "4-6", svc.requests[0].TargetAge)
	})

	t.Run("材料がない場合はエラー", func(t *testing.T) {
		svc := &fakeService{rules: caption.StandardRules}
		_, err := NewCaptionRunner(cfg, svc).Run(context.Background(), &domain.PageRecord{ID: "empty"})
		assert.ErrorIs(t, err, ErrNoPageContent)
	})

	t.Run("nil ページはエラー", func(t *testing.T) {
		svc := &fakeService{rules: caption.StandardRules}
		_, err := NewCaptionRunner(cfg, svc).Run(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("コンテキストのキャンセルは伝播する", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc := &fakeService{rules: caption.StandardRules, results: []domain.PanelCaptions{generated}}
		page := draftPage("", "", "", "")

		_, err := NewCaptionRunner(cfg, svc).Run(ctx, page)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCaptionRunner_RunAndSave(t *testing.T) {
	dir := t.TempDir()
	svc := &fakeService{rules: caption.StandardRules, results: []domain.PanelCaptions{generated}}
	page := draftPage(generated.A, generated.B, generated.C, generated.D)

	got, path, err := NewCaptionRunner(config.DefaultConfig(), svc).RunAndSave(context.Background(), page, dir)
	require.NoError(t, err)
	assert.Equal(t, generated, got)
	assert.Equal(t, "captions.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved domain.PanelCaptions
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, generated, saved)
}
