package caption

import (
	"regexp"
	"strings"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

var (
	dotsRegex     = regexp.MustCompile(`\.{2,}`)
	exclaimRegex  = regexp.MustCompile(`!{2,}`)
	questionRegex = regexp.MustCompile(`\?{2,}`)
)

// Normalize はキャプションを 1 行の正規形に変換し、MaxLength で切り詰めます。
// 切り詰め時に省略記号は付けません。冪等です。
func (r Rules) Normalize(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	s = dotsRegex.ReplaceAllString(s, "…")
	s = exclaimRegex.ReplaceAllString(s, "!")
	s = questionRegex.ReplaceAllString(s, "?")

	runes := []rune(s)
	if len(runes) > r.MaxLength {
		// 切り詰めで末尾に空白が残ると 2 回目の呼び出しで結果が変わるため再度 Trim する
		s = strings.TrimSpace(string(runes[:r.MaxLength]))
	}
	return s
}

// NormalizeAll は 4 コマすべてを正規化します。
func (r Rules) NormalizeAll(pc domain.PanelCaptions) domain.PanelCaptions {
	for _, id := range domain.ReadingOrder {
		pc.Set(id, r.Normalize(pc.Get(id)))
	}
	return pc
}
