package composer

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageLoader_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("HTTP の取得結果をキャッシュすること", func(t *testing.T) {
		body := solidPNG(t, 10, 10, color.White)
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		}))
		defer srv.Close()

		l := NewImageLoader(srv.Client(), nil)
		for i := 0; i < 3; i++ {
			img, err := l.Load(ctx, srv.URL+"/page.png")
			require.NoError(t, err)
			assert.Equal(t, 10, img.Bounds().Dx())
		}
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("取得に失敗したら直接取得を 1 度だけ再試行すること", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewImageLoader(srv.Client(), nil).Fetch(ctx, srv.URL+"/missing.png")
		assert.ErrorIs(t, err, ErrImageLoad)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("再試行で取得できればその結果を使うこと", func(t *testing.T) {
		body := solidPNG(t, 4, 4, color.White)
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write(body)
		}))
		defer srv.Close()

		data, err := NewImageLoader(srv.Client(), nil).Fetch(ctx, srv.URL)
		require.NoError(t, err)
		assert.Equal(t, body, data)
	})

	t.Run("ローカルファイルを読み込むこと", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "page.png")
		require.NoError(t, os.WriteFile(path, solidPNG(t, 6, 8, color.White), 0o644))
		img, err := NewImageLoader(nil, nil).Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dy())
	})

	t.Run("data URI を解釈すること", func(t *testing.T) {
		data, err := decodeDataURI("data:text/plain,hello%20world")
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))

		_, err = decodeDataURI("data:image/png;base64")
		assert.ErrorIs(t, err, ErrImageLoad)

		_, err = decodeDataURI("data:image/png;base64,@@@")
		assert.ErrorIs(t, err, ErrImageLoad)
	})

	t.Run("空のソースはエラーになること", func(t *testing.T) {
		_, err := NewImageLoader(nil, nil).Fetch(ctx, " ")
		assert.ErrorIs(t, err, ErrImageLoad)
	})
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a.png", redactURL("https://example.com/a.png?token=secret"))
}
