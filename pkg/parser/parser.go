package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

// Parser はページ台本を解析するためのインターフェースです。
type Parser interface {
	Parse(scriptURL string, input string) (*domain.PageRecord, error)
}

// JSONParser は JSON 形式の PageRecord を解析します。
type JSONParser struct{}

// NewJSONParser は JSONParser を生成します。
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Parse は JSON テキストを PageRecord に変換します。
func (p *JSONParser) Parse(_ string, input string) (*domain.PageRecord, error) {
	return DecodePage(strings.NewReader(input))
}

// DecodePage は r から PageRecord を読み込み、パネル ID を検証します。
func DecodePage(r io.Reader) (*domain.PageRecord, error) {
	page := &domain.PageRecord{}
	if err := json.NewDecoder(r).Decode(page); err != nil {
		return nil, fmt.Errorf("ページJSONのパースに失敗しました: %w", err)
	}
	for _, d := range page.Panels {
		if !d.ID.Valid() {
			return nil, fmt.Errorf("不明なパネルIDです: %q", d.ID)
		}
	}
	return page, nil
}

// ForPath はファイル拡張子に応じたパーサーを返します。
func ForPath(path string) Parser {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return NewJSONParser()
	}
	return NewMarkdownParser()
}
