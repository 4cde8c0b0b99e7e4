package parser

import (
	"strings"
	"unicode"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

// sentenceEnders は文末とみなす記号です。
const sentenceEnders = ".!?。؟…"

// SplitIntoFour は長いテキストを必ず 4 つの断片に分割します。
// 4 文以上あれば文単位で連続した 4 グループに、そうでなければ語単位で均等に分けます。
// 構造化キャプションが存在しない旧来のページでのみ使用します。
func SplitIntoFour(text string) [domain.PanelCount]string {
	var parts [domain.PanelCount]string
	clean := strings.TrimSpace(text)
	if clean == "" {
		return parts
	}

	sentences := splitSentences(clean)
	if len(sentences) >= domain.PanelCount {
		per := ceilDiv(len(sentences), domain.PanelCount)
		p := 0
		for i, s := range sentences {
			if p < domain.PanelCount-1 && i > 0 && i%per == 0 {
				p++
			}
			if parts[p] != "" {
				parts[p] += " "
			}
			parts[p] += s
		}
		return parts
	}

	return splitWords(strings.Fields(clean))
}

// splitWords は語のスライスを ceil(n/4) 語ずつ連続した 4 グループにします。
func splitWords(words []string) [domain.PanelCount]string {
	var parts [domain.PanelCount]string
	per := ceilDiv(len(words), domain.PanelCount)
	if per == 0 {
		return parts
	}
	for i := range parts {
		start := i * per
		if start >= len(words) {
			break
		}
		end := min(start+per, len(words))
		parts[i] = strings.Join(words[start:end], " ")
	}
	return parts
}

// splitSentences は文末記号の直後の空白で区切ります。記号は文側に残します。
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		if !strings.ContainsRune(sentenceEnders, runes[i]) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
