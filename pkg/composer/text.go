package composer

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

var textColor = color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}

var (
	defaultFontOnce sync.Once
	defaultFont     *opentype.Font
	defaultFontErr  error
)

// DefaultFont は埋め込みの Go Bold フォントを返します。
// ヘブライ文字のグリフを含まないため、本番では LoadFont で対応フォントを指定してください。
func DefaultFont() (*opentype.Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = opentype.Parse(gobold.TTF)
	})
	return defaultFont, defaultFontErr
}

// LoadFont は TTF/OTF ファイルを読み込みます。
func LoadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("フォントファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("フォントの解析に失敗しました (%s): %w", path, err)
	}
	return f, nil
}

// missingGlyphs は f に存在しない文字を重複なく返します。空白は対象外です。
func missingGlyphs(f *opentype.Font, texts ...string) []rune {
	var buf sfnt.Buffer
	seen := map[rune]bool{}
	var missing []rune
	for _, t := range texts {
		for _, r := range t {
			if r == ' ' || seen[r] {
				continue
			}
			seen[r] = true
			if idx, err := f.GlyphIndex(&buf, r); err != nil || idx == 0 {
				missing = append(missing, r)
			}
		}
	}
	return missing
}

// faceSet はフォントサイズごとの font.Face を保持します。
// font.Face は並行利用できないため、合成 1 回ごとに生成して Close します。
type faceSet struct {
	font  *opentype.Font
	faces map[float64]font.Face
	err   error
}

func newFaceSet(f *opentype.Font) *faceSet {
	return &faceSet{font: f, faces: make(map[float64]font.Face)}
}

func (fs *faceSet) face(size float64) (font.Face, error) {
	if face, ok := fs.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(fs.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("フォントフェイスの生成に失敗しました (size=%.0f): %w", size, err)
	}
	fs.faces[size] = face
	return face, nil
}

// Measure は Measurer を満たします。フェイス生成に失敗した場合は最初のエラーを保持します。
func (fs *faceSet) Measure(text string, size float64) float64 {
	face, err := fs.face(size)
	if err != nil {
		if fs.err == nil {
			fs.err = err
		}
		return 0
	}
	return fixedToFloat(font.MeasureString(face, visualOrder(text)))
}

// Err は計測中に発生した最初のエラーを返します。
func (fs *faceSet) Err() error {
	return fs.err
}

func (fs *faceSet) Close() {
	for _, face := range fs.faces {
		_ = face.Close()
	}
}

// drawCentered は (cx, cy) を中心に 1 行のテキストを描画します。
func (fs *faceSet) drawCentered(dst *image.RGBA, text string, size, cx, cy float64) error {
	face, err := fs.face(size)
	if err != nil {
		return err
	}
	visual := visualOrder(text)
	width := fixedToFloat(font.MeasureString(face, visual))
	m := face.Metrics()
	baseline := cy + (fixedToFloat(m.Ascent)-fixedToFloat(m.Descent))/2

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(cx - width/2), Y: floatToFixed(baseline)},
	}
	d.DrawString(visual)
	return nil
}

// visualOrder は論理順の文字列を左から右へ描画するための表示順に並べ替えます。
// 段落の既定方向は右から左です。
func visualOrder(text string) string {
	if text == "" {
		return ""
	}
	var p bidi.Paragraph
	if _, err := p.SetString(text, bidi.DefaultDirection(bidi.RightToLeft)); err != nil {
		return text
	}
	o, err := p.Order()
	if err != nil || o.NumRuns() == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for i := o.NumRuns() - 1; i >= 0; i-- {
		run := o.Run(i)
		if run.Direction() == bidi.RightToLeft {
			sb.WriteString(bidi.ReverseString(run.String()))
		} else {
			sb.WriteString(run.String())
		}
	}
	return sb.String()
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
