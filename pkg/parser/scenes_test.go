package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

func TestExtractScenes(t *testing.T) {
	t.Run("Panel N: 形式を順にマッピングすること", func(t *testing.T) {
		prompt := "A 2x2 comic. Panel 1: a fox wakes up. Panel 2: the fox eats. panel 3 the fox runs. Panel 4: the fox sleeps."
		got := ExtractScenes(prompt)
		assert.Equal(t, domain.PanelScene{ID: domain.PanelA, ScenePrompt: "a fox wakes up"}, got[0])
		assert.Equal(t, "the fox eats", got[1].ScenePrompt)
		assert.Equal(t, "the fox runs", got[2].ScenePrompt)
		assert.Equal(t, domain.PanelD, got[3].ID)
		assert.Equal(t, "the fox sleeps", got[3].ScenePrompt)
	})

	t.Run("P1: 形式も認識すること", func(t *testing.T) {
		got := ExtractScenes("P1: sun. P2: rain. P3: wind. P4: snow.")
		assert.Equal(t, "sun", got[0].ScenePrompt)
		assert.Equal(t, "snow", got[3].ScenePrompt)
	})

	t.Run("マーカーが無いパネルは語数で等分した断片を使うこと", func(t *testing.T) {
		got := ExtractScenes("one two three four five six seven eight")
		assert.Equal(t, "one two", got[0].ScenePrompt)
		assert.Equal(t, "seven eight", got[3].ScenePrompt)
	})

	t.Run("断片が空になるパネルはプロンプト全体を使うこと", func(t *testing.T) {
		got := ExtractScenes("tiny fox")
		assert.Equal(t, "tiny", got[0].ScenePrompt)
		assert.Equal(t, "fox", got[1].ScenePrompt)
		assert.Equal(t, "tiny fox", got[2].ScenePrompt)
		assert.Equal(t, "tiny fox", got[3].ScenePrompt)
	})

	t.Run("空入力でも 4 要素を返すこと", func(t *testing.T) {
		got := ExtractScenes("")
		for i, id := range domain.ReadingOrder {
			assert.Equal(t, id, got[i].ID)
			assert.Empty(t, got[i].ScenePrompt)
		}
	})
}
