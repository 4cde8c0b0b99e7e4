package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptionPromptBuilder_Build(t *testing.T) {
	b, err := NewCaptionPromptBuilder()
	require.NoError(t, err)

	data := TemplateData{
		PageID:    "page-1",
		PanelID:   "C",
		TargetAge: "3-6",
		Theme:     "friendship",
		Scene:     "a fox runs",
		Scenes: []SceneData{
			{ID: "A", Position: "Top-Right (first)", Scene: "a fox wakes up"},
			{ID: "B", Position: "Top-Left", Scene: "a fox eats"},
		},
		MaxLength:  65,
		MinWords:   5,
		MaxWords:   10,
		Connectors: []string{"ו", "אבל"},
	}

	t.Run("一括プロンプトに全シーンと制約が含まれること", func(t *testing.T) {
		out, err := b.Build(ModeBatch, data)
		require.NoError(t, err)
		assert.Contains(t, out, "Panel A: a fox wakes up")
		assert.Contains(t, out, "B = Top-Left")
		assert.Contains(t, out, "Maximum 65 characters")
		assert.Contains(t, out, "ו, אבל")
		assert.Contains(t, out, `page "page-1"`)
	})

	t.Run("単体プロンプトは対象パネルのみを含むこと", func(t *testing.T) {
		out, err := b.Build(ModeSingle, data)
		require.NoError(t, err)
		assert.Contains(t, out, "panel C")
		assert.Contains(t, out, "a fox runs")
		assert.NotContains(t, out, "a fox eats")
	})

	t.Run("不明なモードはエラーになること", func(t *testing.T) {
		_, err := b.Build("unknown", data)
		assert.ErrorIs(t, err, ErrUnknownMode)
	})

	t.Run("シーンがなければ一括プロンプトを組み立てないこと", func(t *testing.T) {
		noScenes := data
		noScenes.Scenes = nil
		_, err := b.Build(ModeBatch, noScenes)
		assert.ErrorIs(t, err, ErrMissingScene)
	})

	t.Run("対象コマがなければ修復プロンプトを組み立てないこと", func(t *testing.T) {
		noPanel := data
		noPanel.PanelID = ""
		_, err := b.Build(ModeSingle, noPanel)
		assert.ErrorIs(t, err, ErrMissingScene)
	})
}
