package composer

import (
	"image"
	"image/color"

	"golang.org/x/image/vector"
)

const outlineWidth = 1.5

var (
	barFill    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 230} // 白 90%
	barOutline = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// drawBar は角丸のキャプションバーを塗りつぶし、細い枠線を描きます。
func drawBar(dst *image.RGBA, bar Rect, radius float64) {
	if bar.W <= 0 || bar.H <= 0 {
		return
	}
	half := outlineWidth / 2
	box := Rect{X: bar.X - half, Y: bar.Y - half, W: bar.W + outlineWidth, H: bar.H + outlineWidth}.Bounds()
	if !box.In(dst.Bounds()) {
		box = box.Intersect(dst.Bounds())
		if box.Empty() {
			return
		}
	}
	ox, oy := float32(box.Min.X), float32(box.Min.Y)

	// 塗り
	fill := vector.NewRasterizer(box.Dx(), box.Dy())
	roundedRect(fill, bar, radius, ox, oy, false)
	fill.Draw(dst, box, image.NewUniform(barFill), image.Point{})

	// 枠線は外側と内側の輪郭を逆向きに重ねたリング
	outer := Rect{X: bar.X - half, Y: bar.Y - half, W: bar.W + outlineWidth, H: bar.H + outlineWidth}
	inner := Rect{X: bar.X + half, Y: bar.Y + half, W: bar.W - outlineWidth, H: bar.H - outlineWidth}
	stroke := vector.NewRasterizer(box.Dx(), box.Dy())
	roundedRect(stroke, outer, radius+half, ox, oy, false)
	if inner.W > 0 && inner.H > 0 {
		roundedRect(stroke, inner, max(radius-half, 0), ox, oy, true)
	}
	stroke.Draw(dst, box, image.NewUniform(barOutline), image.Point{})
}

// roundedRect は r の角丸矩形パスを z に追加します。reverse で反時計回りになります。
func roundedRect(z *vector.Rasterizer, r Rect, radius float64, ox, oy float32, reverse bool) {
	radius = min(radius, r.W/2, r.H/2)
	x0, y0 := float32(r.X)-ox, float32(r.Y)-oy
	x1, y1 := x0+float32(r.W), y0+float32(r.H)
	rad := float32(radius)

	if !reverse {
		z.MoveTo(x0+rad, y0)
		z.LineTo(x1-rad, y0)
		z.QuadTo(x1, y0, x1, y0+rad)
		z.LineTo(x1, y1-rad)
		z.QuadTo(x1, y1, x1-rad, y1)
		z.LineTo(x0+rad, y1)
		z.QuadTo(x0, y1, x0, y1-rad)
		z.LineTo(x0, y0+rad)
		z.QuadTo(x0, y0, x0+rad, y0)
	} else {
		z.MoveTo(x0+rad, y0)
		z.QuadTo(x0, y0, x0, y0+rad)
		z.LineTo(x0, y1-rad)
		z.QuadTo(x0, y1, x0+rad, y1)
		z.LineTo(x1-rad, y1)
		z.QuadTo(x1, y1, x1, y1-rad)
		z.LineTo(x1, y0+rad)
		z.QuadTo(x1, y0, x1-rad, y0)
		z.LineTo(x0+rad, y0)
	}
	z.ClosePath()
}
