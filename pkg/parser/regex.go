package parser

import (
	"fmt"
	"regexp"
)

var (
	// TitleRegex は "# タイトル" 形式のタイトル行をキャプチャします。
	TitleRegex = regexp.MustCompile(`^#\s+(.+)`)

	// PanelRegex は "## Panel A" 形式のパネル見出しを特定し、ID をキャプチャします。
	PanelRegex = regexp.MustCompile(`(?i)^##\s+Panel\s*([A-D])?\b`)

	// FieldRegex は "- key: value" 形式のフィールド行をキャプチャします。
	FieldRegex = regexp.MustCompile(`^\s*-\s*([a-zA-Z_]+):\s*(.+)`)

	// sceneMarkerRegexes は "Panel 1: ..." 形式のシーン記述を番号順にキャプチャします。
	sceneMarkerRegexes = buildMarkerRegexes(`(?i)Panel\s*%d[:\s]+([^.]+)`)

	// shortMarkerRegexes は "P1: ..." 形式の短縮記法です。
	shortMarkerRegexes = buildMarkerRegexes(`(?i)P%d[:\s]+([^.]+)`)
)

func buildMarkerRegexes(format string) [4]*regexp.Regexp {
	var res [4]*regexp.Regexp
	for i := range res {
		res[i] = regexp.MustCompile(fmt.Sprintf(format, i+1))
	}
	return res
}
