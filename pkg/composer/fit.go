package composer

import "strings"

// Ellipsis は切り詰め時に末尾へ付ける記号です。
const Ellipsis = "…"

// Measurer は指定フォントサイズでの描画幅 (px) を返します。
type Measurer interface {
	Measure(text string, size float64) float64
}

// FitResult は shrink-to-fit の結果です。
type FitResult struct {
	Text      string
	Size      float64
	Truncated bool
}

// FitText は text が maxWidth に収まる最大のフォントサイズを startSize から 1 ずつ下げて探します。
// minSize でも収まらない場合は 1 文字ずつ削って省略記号を付けます。
// 省略記号だけでも収まらない場合は空文字列を返します。
func FitText(text string, maxWidth, startSize, minSize float64, m Measurer) FitResult {
	text = strings.TrimSpace(text)
	if text == "" {
		return FitResult{Size: max(startSize, minSize)}
	}

	size := max(startSize, minSize)
	for ; size >= minSize; size-- {
		if m.Measure(text, size) <= maxWidth {
			return FitResult{Text: text, Size: size}
		}
	}
	size = minSize

	runes := []rune(text)
	for n := len(runes) - 1; n >= 0; n-- {
		candidate := strings.TrimRight(string(runes[:n]), " ") + Ellipsis
		if m.Measure(candidate, size) <= maxWidth {
			return FitResult{Text: candidate, Size: size, Truncated: true}
		}
	}
	return FitResult{Size: size, Truncated: true}
}
