package composer

import (
	"image"
	"math"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

const (
	// DefaultCaptionHeightRatio はパネル高さに対するキャプションバーの比率です。
	DefaultCaptionHeightRatio = 0.20
	// DefaultPaddingRatio はバー高さに対する左右の余白の比率です。
	DefaultPaddingRatio = 0.08

	barInset        = 2.0
	minPadding      = 6.0
	textSlack       = 8.0
	radiusRatio     = 0.15
	maxRadius       = 8.0
	fontHeightRatio = 0.50
	// MinFontSize は shrink-to-fit の下限 (px) です。
	MinFontSize = 10.0
)

// Layout はキャプションバーの比率設定です。
type Layout struct {
	CaptionHeightRatio float64
	PaddingRatio       float64
}

// DefaultLayout は既定の比率を返します。
func DefaultLayout() Layout {
	return Layout{
		CaptionHeightRatio: DefaultCaptionHeightRatio,
		PaddingRatio:       DefaultPaddingRatio,
	}
}

func (l Layout) withDefaults() Layout {
	if l.CaptionHeightRatio <= 0 || l.CaptionHeightRatio > 1 {
		l.CaptionHeightRatio = DefaultCaptionHeightRatio
	}
	if l.PaddingRatio < 0 {
		l.PaddingRatio = DefaultPaddingRatio
	}
	return l
}

// Rect は小数座標の矩形です。
type Rect struct {
	X, Y, W, H float64
}

// Bounds は Rect を内包する整数矩形を返します。
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	)
}

// PanelPlan は 1 コマ分の描画計画です。
type PanelPlan struct {
	ID           domain.PanelID
	Panel        image.Rectangle
	Bar          Rect
	Radius       float64
	Padding      float64
	CenterX      float64
	CenterY      float64
	MaxTextWidth float64
	Fit          FitResult
}

// PanelRects は w x h のキャンバスを 2x2 に分割し、読み順で各パネルの矩形を返します。
// 幅や高さが奇数の場合は右列・下段が 1px 大きくなります。
func PanelRects(w, h int) [domain.PanelCount]image.Rectangle {
	xs := [3]int{0, w / 2, w}
	ys := [3]int{0, h / 2, h}

	var rects [domain.PanelCount]image.Rectangle
	for i, id := range domain.ReadingOrder {
		q := id.Quadrant()
		rects[i] = image.Rect(xs[q.Col], ys[q.Row], xs[q.Col+1], ys[q.Row+1])
	}
	return rects
}

// Plan はパネル矩形、キャプションバー、フォントサイズと描画テキストを決定します。
// texts は読み順 (A, B, C, D) です。描画を伴わない純粋な計算です。
func Plan(w, h int, texts [domain.PanelCount]string, layout Layout, m Measurer) [domain.PanelCount]PanelPlan {
	layout = layout.withDefaults()
	rects := PanelRects(w, h)

	var plans [domain.PanelCount]PanelPlan
	for i, id := range domain.ReadingOrder {
		r := rects[i]
		panelW := float64(r.Dx())
		panelH := float64(r.Dy())

		captionH := panelH * layout.CaptionHeightRatio
		captionY := float64(r.Min.Y) + panelH - captionH
		padding := max(minPadding, captionH*layout.PaddingRatio)

		p := PanelPlan{
			ID:    id,
			Panel: r,
			Bar: Rect{
				X: float64(r.Min.X) + barInset,
				Y: captionY + barInset,
				W: panelW - 2*barInset,
				H: captionH - 2*barInset,
			},
			Radius:       min(captionH*radiusRatio, maxRadius),
			Padding:      padding,
			CenterX:      float64(r.Min.X) + panelW/2,
			CenterY:      captionY + captionH/2,
			MaxTextWidth: panelW - 2*padding - textSlack,
		}
		start := math.Floor(captionH * fontHeightRatio)
		p.Fit = FitText(texts[i], p.MaxTextWidth, start, MinFontSize, m)
		plans[i] = p
	}
	return plans
}
