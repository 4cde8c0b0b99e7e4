package parser

import (
	"regexp"
	"strings"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

// ExtractScenes は 1 つにまとめられた英語の画像プロンプトから 4 コマ分のシーンを取り出します。
// "Panel 1:" や "P1:" の記述が見つからないパネルは、プロンプト全体を語数で 4 等分した断片を使います。
// 断片が空になる場合はプロンプト全体を割り当てます。
func ExtractScenes(prompt string) [domain.PanelCount]domain.PanelScene {
	var scenes [domain.PanelCount]domain.PanelScene
	chunks := splitWords(strings.Fields(prompt))

	for i, id := range domain.ReadingOrder {
		scenes[i].ID = id

		if m := matchMarker(prompt, i); m != "" {
			scenes[i].ScenePrompt = m
			continue
		}

		if chunks[i] != "" {
			scenes[i].ScenePrompt = chunks[i]
		} else {
			scenes[i].ScenePrompt = strings.TrimSpace(prompt)
		}
	}
	return scenes
}

func matchMarker(prompt string, i int) string {
	for _, re := range []*regexp.Regexp{sceneMarkerRegexes[i], shortMarkerRegexes[i]} {
		if m := re.FindStringSubmatch(prompt); len(m) > 1 {
			if s := strings.TrimSpace(m[1]); s != "" {
				return s
			}
		}
	}
	return ""
}
