package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-caption-kit/pkg/caption"
	"github.com/shouni/go-caption-kit/pkg/config"
	"github.com/shouni/go-caption-kit/pkg/domain"
)

// stubGenerator は固定の応答を返す TextGenerator です。
type stubGenerator struct{}

func (stubGenerator) GenerateJSON(context.Context, string, any) (string, error) {
	return `{"pageId":"p","panelCaptions":{"A":"הילד קם בבוקר עם חיוך","B":"הוא אוכל ארוחת בוקר טעימה","C":"אחר כך הוא משחק בכדור","D":"בערב הילד הולך לישון מוקדם"}}`, nil
}

func (stubGenerator) GenerateText(context.Context, string) (string, error) {
	return "הילד משחק בכדור בגן היפה", nil
}

func TestNew(t *testing.T) {
	t.Run("プロファイルに応じた規則を選ぶ", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Profile = caption.ProfileCompact

		m, err := New(context.Background(), ManagerArgs{Config: cfg, TextGenerator: stubGenerator{}})
		require.NoError(t, err)
		assert.Equal(t, caption.CompactRules, m.Rules())
	})

	t.Run("不明なプロファイルはエラー", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Profile = "poetic"

		_, err := New(context.Background(), ManagerArgs{Config: cfg, TextGenerator: stubGenerator{}})
		assert.Error(t, err)
	})

	t.Run("API キーがなければ合成だけが使える", func(t *testing.T) {
		m, err := New(context.Background(), ManagerArgs{Config: config.DefaultConfig()})
		require.NoError(t, err)

		_, err = m.BuildCaptionRunner()
		assert.ErrorIs(t, err, ErrCaptionUnavailable)

		_, err = m.BuildComposeRunner()
		assert.NoError(t, err)
	})

	t.Run("存在しないフォントはエラー", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.FontPath = "/nonexistent/font.ttf"

		_, err := New(context.Background(), ManagerArgs{Config: cfg, TextGenerator: stubGenerator{}})
		assert.Error(t, err)
	})
}

func TestManager_BuildCaptionRunner(t *testing.T) {
	m, err := New(context.Background(), ManagerArgs{Config: config.DefaultConfig(), TextGenerator: stubGenerator{}})
	require.NoError(t, err)

	r, err := m.BuildCaptionRunner()
	require.NoError(t, err)

	page := &domain.PageRecord{
		ID:     "p",
		Panels: []domain.PanelDraft{{ID: domain.PanelA, ScenePrompt: "boy wakes up"}},
	}
	got, err := r.Run(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "הילד קם בבוקר עם חיוך", got.A)
	assert.True(t, caption.StandardRules.ValidateAll(got).Valid)

	_, err = m.BuildComposeRunner()
	require.NoError(t, err)

	pub, err := m.BuildPublishRunner()
	require.NoError(t, err)
	page.Captions = &got
	assert.Contains(t, pub.BuildMarkdown(page), "- caption: "+got.A)
}
