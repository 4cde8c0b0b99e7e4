package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/segmentio/ksuid"

	"github.com/shouni/go-caption-kit/examples"
	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/parser"
)

// loadPage はページ台本を読み込むのだ。
// path が空なら同梱のサンプル、"-" なら標準入力の Markdown を使うのだ。
func loadPage(path string) (*domain.PageRecord, error) {
	var (
		page *domain.PageRecord
		err  error
	)

	switch path {
	case "":
		slog.Info("台本が指定されていないので同梱のサンプルを使うのだ")
		page, err = examples.SamplePage()
	case "-":
		var data []byte
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("標準入力の読み込みに失敗したのだ: %w", err)
		}
		page, err = parser.NewMarkdownParser().Parse("", string(data))
	default:
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("台本ファイルの読み込みに失敗したのだ (path: %s): %w", path, err)
		}
		page, err = parser.ForPath(path).Parse(path, string(data))
	}
	if err != nil {
		return nil, err
	}

	if opts.PageID != "" {
		page.ID = opts.PageID
	}
	if page.ID == "" {
		page.ID = ksuid.New().String()
	}
	return page, nil
}

// loadCaptions は PanelCaptions の JSON ファイルを読み込むのだ。
func loadCaptions(path string) (*domain.PanelCaptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("キャプションファイルの読み込みに失敗したのだ (path: %s): %w", path, err)
	}
	var pc domain.PanelCaptions
	if err := json.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("キャプションJSONのパースに失敗したのだ: %w", err)
	}
	return &pc, nil
}

// printJSON は v を整形して標準出力に書き出すのだ。
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
