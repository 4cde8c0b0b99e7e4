package caption

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

// connectorList は文頭・文末に置けない接続語です。
var connectorList = []string{"ו", "ואז", "אבל", "כי", "ש", "לכן", "אז", "רק", "גם", "את", "של", "אם", "כש"}

var connectors = func() map[string]struct{} {
	m := make(map[string]struct{}, len(connectorList))
	for _, w := range connectorList {
		m[w] = struct{}{}
	}
	return m
}()

// Connectors は接続語の禁止リストのコピーを返します。
func Connectors() []string {
	return append([]string(nil), connectorList...)
}

// allowedPunct はヘブライ文字以外で許可する記号です。
const allowedPunct = ".,!?-…״׳\"'"

// danglingPunct は文頭に来てはならない記号です。
const danglingPunct = ",،;:-…"

// IsConnector は単語が接続語の禁止リストに含まれるかを判定します。
func IsConnector(word string) bool {
	_, ok := connectors[strings.Trim(word, allowedPunct)]
	return ok
}

func isHebrew(r rune) bool {
	return r >= 0x0590 && r <= 0x05FF
}

func isAllowedRune(r rune) bool {
	return isHebrew(r) || unicode.IsSpace(r) || strings.ContainsRune(allowedPunct, r)
}

// Validate は 1 件のキャプションを規則に照らして検証します。
// 空の場合のみ即座に返し、それ以外の違反はすべて収集します。
func (r Rules) Validate(text string, id domain.PanelID) domain.ValidationResult {
	return domain.NewValidationResult(r.violations(text, id))
}

func (r Rules) violations(text string, id domain.PanelID) []domain.Violation {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []domain.Violation{{Panel: id, Code: domain.ViolationEmpty}}
	}

	var vs []domain.Violation
	add := func(code domain.ViolationCode, detail string) {
		vs = append(vs, domain.Violation{Panel: id, Code: code, Detail: detail})
	}

	for _, c := range trimmed {
		if !isAllowedRune(c) {
			add(domain.ViolationCharset, fmt.Sprintf("%q", c))
			break
		}
	}

	if strings.ContainsAny(trimmed, "\r\n") {
		add(domain.ViolationMultiline, "")
	}

	if n := utf8.RuneCountInString(trimmed); n > r.MaxLength {
		add(domain.ViolationTooLong, fmt.Sprintf("%d > %d", n, r.MaxLength))
	}

	words := strings.Fields(trimmed)
	switch {
	case len(words) < r.MinWords:
		add(domain.ViolationTooFewWords, fmt.Sprintf("%d < %d", len(words), r.MinWords))
	case len(words) > r.MaxWords:
		add(domain.ViolationTooManyWords, fmt.Sprintf("%d > %d", len(words), r.MaxWords))
	}

	if IsConnector(words[0]) {
		add(domain.ViolationForbiddenStart, words[0])
	}
	if last := words[len(words)-1]; IsConnector(last) {
		add(domain.ViolationForbiddenEnd, last)
	}

	if first, _ := utf8.DecodeRuneInString(trimmed); strings.ContainsRune(danglingPunct, first) {
		add(domain.ViolationDanglingStart, string(first))
	}

	return vs
}

// ValidateAll は 4 コマすべてを検証し、違反を読み順に連結します。
func (r Rules) ValidateAll(pc domain.PanelCaptions) domain.ValidationResult {
	var vs []domain.Violation
	for _, id := range domain.ReadingOrder {
		vs = append(vs, r.violations(pc.Get(id), id)...)
	}
	return domain.NewValidationResult(vs)
}

// CountWords は空白区切りの語数を返します。
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// TotalWords は 4 コマの語数の合計を返します。
func TotalWords(pc domain.PanelCaptions) int {
	total := 0
	for _, t := range pc.Ordered() {
		total += CountWords(t)
	}
	return total
}
