package composer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	imageports "github.com/shouni/gemini-image-kit/ports"
	"golang.org/x/image/font/opentype"

	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/parser"
)

const pngMIMEType = "image/png"

var (
	// ErrImageLoad は元画像を取得できなかった場合のエラーです。
	ErrImageLoad = errors.New("image load failed")
	// ErrImageDecode は元画像をデコードできなかった場合のエラーです。
	ErrImageDecode = errors.New("image decode failed")
	// ErrEncode は合成結果のエンコードや描画準備に失敗した場合のエラーです。
	ErrEncode = errors.New("image encode failed")
)

// Options は 1 回の合成に必要な入力です。
// Captions が nil でなければ FreeText は一切参照されません。
type Options struct {
	// ImageSource は http(s) URL、data URI、またはローカルパスです。
	ImageSource string
	// Image は生成済み画像を直接渡す場合に使います。ImageSource より優先されます。
	Image *imageports.ImageResponse

	Captions *domain.PanelCaptions
	FreeText string

	// CaptionHeightRatio が 0 以下の場合は Composer の比率を使います。
	CaptionHeightRatio float64
	// PaddingRatio が nil の場合は Composer の比率を使います。0 を指定すると余白は下限値になります。
	PaddingRatio *float64
	// Font は Composer の既定フォントを上書きします。
	Font *opentype.Font
}

// Composer は 2x2 のコマ画像にキャプションバーを合成します。
type Composer struct {
	loader *ImageLoader
	font   *opentype.Font
	layout Layout
}

// Option は Composer の任意設定です。
type Option func(*Composer)

// WithFont は描画フォントを設定します。
func WithFont(f *opentype.Font) Option {
	return func(c *Composer) { c.font = f }
}

// WithLoader は画像ローダーを差し替えます。
func WithLoader(l *ImageLoader) Option {
	return func(c *Composer) { c.loader = l }
}

// WithHTTPClient は既定のローダーが使う HTTP クライアントを設定します。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Composer) { c.loader = NewImageLoader(hc, nil) }
}

// WithLayout は既定の比率を設定します。
func WithLayout(l Layout) Option {
	return func(c *Composer) { c.layout = l }
}

// New は Composer を初期化します。フォント未指定の場合は DefaultFont を使います。
func New(opts ...Option) (*Composer, error) {
	c := &Composer{layout: DefaultLayout()}
	for _, opt := range opts {
		opt(c)
	}
	if c.loader == nil {
		c.loader = NewImageLoader(nil, nil)
	}
	if c.font == nil {
		f, err := DefaultFont()
		if err != nil {
			return nil, fmt.Errorf("既定フォントの読み込みに失敗しました: %w", err)
		}
		c.font = f
	}
	return c, nil
}

// Result は合成画像と描画計画です。
type Result struct {
	Image *image.RGBA
	Plans [domain.PanelCount]PanelPlan
}

// Compose は合成結果を PNG の data URI として返します。
func (c *Composer) Compose(ctx context.Context, opts Options) (string, error) {
	data, err := c.ComposePNG(ctx, opts)
	if err != nil {
		return "", err
	}
	return DataURI(pngMIMEType, data), nil
}

// ComposeImage は合成結果を ImageResponse として返します。
func (c *Composer) ComposeImage(ctx context.Context, opts Options) (*imageports.ImageResponse, error) {
	data, err := c.ComposePNG(ctx, opts)
	if err != nil {
		return nil, err
	}
	resp := &imageports.ImageResponse{Data: data, MimeType: pngMIMEType}
	if opts.Image != nil {
		resp.UsedSeed = opts.Image.UsedSeed
	}
	return resp, nil
}

// ComposePNG は合成結果を PNG バイト列として返します。
func (c *Composer) ComposePNG(ctx context.Context, opts Options) ([]byte, error) {
	res, err := c.Render(ctx, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, res.Image); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Render は元画像を読み込み、キャプションバーとテキストを描画したキャンバスを返します。
func (c *Composer) Render(ctx context.Context, opts Options) (*Result, error) {
	startTime := time.Now()
	texts := captionTexts(domain.NewCaptionSource(opts.Captions, opts.FreeText))

	src, err := c.loadSource(ctx, opts)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Src)

	f := c.font
	if opts.Font != nil {
		f = opts.Font
	}
	if missing := missingGlyphs(f, texts[:]...); len(missing) > 0 {
		slog.WarnContext(ctx, "フォントに存在しない文字があります", "runes", string(missing))
	}

	faces := newFaceSet(f)
	defer faces.Close()

	layout := c.layout
	if opts.CaptionHeightRatio > 0 {
		layout.CaptionHeightRatio = opts.CaptionHeightRatio
	}
	if opts.PaddingRatio != nil {
		layout.PaddingRatio = *opts.PaddingRatio
	}

	plans := Plan(b.Dx(), b.Dy(), texts, layout, faces)
	if err := faces.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	for _, p := range plans {
		drawBar(canvas, p.Bar, p.Radius)
		if p.Fit.Text == "" {
			continue
		}
		if err := faces.drawCentered(canvas, p.Fit.Text, p.Fit.Size, p.CenterX, p.CenterY); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		if p.Fit.Truncated {
			slog.DebugContext(ctx, "キャプションを切り詰めました", "panel", p.ID, "text", p.Fit.Text)
		}
	}

	slog.DebugContext(ctx, "キャプションを合成しました",
		"width", b.Dx(), "height", b.Dy(),
		"duration", time.Since(startTime).Round(time.Millisecond))
	return &Result{Image: canvas, Plans: plans}, nil
}

func (c *Composer) loadSource(ctx context.Context, opts Options) (image.Image, error) {
	if opts.Image != nil {
		return Decode(opts.Image.Data)
	}
	return c.loader.Load(ctx, opts.ImageSource)
}

// captionTexts はキャプションの出所から読み順の 4 テキストを決めます。
// 構造化キャプションの場合、自由テキストの分割は行いません。
func captionTexts(src domain.CaptionSource) [domain.PanelCount]string {
	switch s := src.(type) {
	case domain.StructuredCaptions:
		return s.Captions.Ordered()
	case domain.FreeTextCaptions:
		return parser.SplitIntoFour(s.Text)
	}
	return [domain.PanelCount]string{}
}

// DataURI はバイト列を base64 の data URI に変換します。
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
