package composer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	_ "golang.org/x/image/webp"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
	defaultFetchTimeout    = 30 * time.Second
	maxImageBytes          = 32 << 20
)

// ImageLoader は URL・data URI・ローカルパスから画像を読み込みます。
// HTTP 取得結果はキャッシュし、同一 URL への同時取得は 1 回にまとめます。
type ImageLoader struct {
	httpClient *http.Client
	cache      *cache.Cache
	group      singleflight.Group
}

// NewImageLoader は ImageLoader を初期化します。httpClient と c は nil でも構いません。
func NewImageLoader(httpClient *http.Client, c *cache.Cache) *ImageLoader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	if c == nil {
		c = cache.New(defaultCacheExpiration, cacheCleanupInterval)
	}
	return &ImageLoader{httpClient: httpClient, cache: c}
}

// Load は src を読み込んでデコードします。
// 取得の失敗は ErrImageLoad、デコードの失敗は ErrImageDecode でラップされます。
func (l *ImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	data, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Fetch は src の生バイト列を返します。
func (l *ImageLoader) Fetch(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return nil, fmt.Errorf("%w: 画像ソースが指定されていません", ErrImageLoad)
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetchRemote(ctx, src)
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
		}
		return data, nil
	}
}

// fetchRemote はキャッシュ経由で取得し、失敗した場合はキャッシュを通さずに 1 度だけ直接取得します。
func (l *ImageLoader) fetchRemote(ctx context.Context, rawURL string) ([]byte, error) {
	if v, ok := l.cache.Get(rawURL); ok {
		if data, ok := v.([]byte); ok {
			return data, nil
		}
	}

	val, err, _ := l.group.Do(rawURL, func() (interface{}, error) {
		data, err := l.download(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		l.cache.Set(rawURL, data, cache.DefaultExpiration)
		return data, nil
	})
	if err == nil {
		if data, ok := val.([]byte); ok {
			return data, nil
		}
		err = fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, ctx.Err())
	}

	slog.WarnContext(ctx, "画像の取得に失敗したため直接取得を再試行します", "url", redactURL(rawURL), "error", err)
	data, retryErr := l.download(ctx, rawURL)
	if retryErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, errors.Join(err, retryErr))
	}
	return data, nil
}

func (l *ImageLoader) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("画像の取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("画像の取得に失敗しました: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み込みに失敗しました: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("画像サイズが上限 (%d bytes) を超えています", maxImageBytes)
	}
	return data, nil
}

// decodeDataURI は "data:[<mime>][;base64],<payload>" を解釈します。
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URI にカンマがありません", ErrImageLoad)
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: data URI の base64 デコードに失敗しました: %w", ErrImageLoad, err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: data URI のデコードに失敗しました: %w", ErrImageLoad, err)
	}
	return []byte(s), nil
}

// Decode は PNG/JPEG/GIF/WebP のバイト列をデコードします。
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: 画像データが空です", ErrImageDecode)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: 画像サイズが不正です (%s, %dx%d)", ErrImageDecode, format, b.Dx(), b.Dy())
	}
	return img, nil
}

// redactURL はログ出力用にクエリ文字列 (署名付き URL のトークン等) を取り除きます。
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	u.RawQuery = ""
	return u.String()
}
