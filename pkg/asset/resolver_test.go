package asset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageFileRegex(t *testing.T) {
	assert.True(t, pageFileRegex.MatchString("captioned_page_1.png"))
	assert.True(t, pageFileRegex.MatchString("captioned_page_12.png"))
	assert.False(t, pageFileRegex.MatchString("captioned_page.png"))
	assert.False(t, pageFileRegex.MatchString("captioned_pageX1.png"))
}

func TestResolveOutputPath(t *testing.T) {
	t.Run("ローカルはディレクトリとファイル名を結合すること", func(t *testing.T) {
		p, err := ResolveOutputPath("out", DefaultCaptionsFileName)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("out", "captions.json"), p)
	})

	t.Run("クラウドストレージの URI はパスとして結合すること", func(t *testing.T) {
		p, err := ResolveOutputPath("gs://bucket/pages", DefaultScriptFileName)
		require.NoError(t, err)
		assert.Equal(t, "gs://bucket/pages/captioned_page.md", p)
	})
}

func TestResolveBaseURL(t *testing.T) {
	t.Run("ローカルは親ディレクトリを区切り文字付きで返すこと", func(t *testing.T) {
		assert.Equal(t, filepath.Join("scripts", "p1")+string(filepath.Separator), ResolveBaseURL(filepath.Join("scripts", "p1", "page.md")))
	})

	t.Run("URL は親パスをスラッシュ付きで返すこと", func(t *testing.T) {
		assert.Equal(t, "https://example.com/a/", ResolveBaseURL("https://example.com/a/page.md"))
	})

	t.Run("空文字は空のまま", func(t *testing.T) {
		assert.Empty(t, ResolveBaseURL(""))
	})
}

func TestPagePath(t *testing.T) {
	t.Run("連番付きのページ画像パスを返すこと", func(t *testing.T) {
		p, err := PagePath("out", 2)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("out", "captioned_page_2.png"), p)
		assert.True(t, pageFileRegex.MatchString(filepath.Base(p)))
	})

	t.Run("0 以下の index はエラー", func(t *testing.T) {
		_, err := PagePath("out", 0)
		assert.Error(t, err)
	})
}
