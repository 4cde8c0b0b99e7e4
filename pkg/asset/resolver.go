package asset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultOutputDir は合成済みページを保存するデフォルトのディレクトリ名です。
	DefaultOutputDir = "output"
	// DefaultPageFileName は合成済みページ画像のベースファイル名です。
	DefaultPageFileName = "captioned_page.png"
	// DefaultCaptionsFileName は確定したキャプションを保存する JSON のファイル名です。
	DefaultCaptionsFileName = "captions.json"
	// DefaultScriptFileName は確定したキャプションを書き戻したページ台本のファイル名です。
	DefaultScriptFileName = "captioned_page.md"
)

// pageFileRegex は captioned_page_1.png 形式のファイル名に一致します。
var pageFileRegex = createIndexedRegex(DefaultPageFileName)

// ResolveOutputPath はディレクトリとファイル名から出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolvePath(baseDir, fileName)
}

// ResolveBaseURL は入力パスの親ディレクトリを、末尾セパレータ付きで返します。
func ResolveBaseURL(rawPath string) string {
	return urlpath.ResolveBaseDir(rawPath)
}

// PagePath は outputDir 配下に index 番目 (1 始まり) のページ画像パスを返します。
// 例: "out", 2 -> "out/captioned_page_2.png"
func PagePath(outputDir string, index int) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("index must be >= 1: %d", index)
	}
	base, err := ResolveOutputPath(outputDir, DefaultPageFileName)
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	return urlpath.GenerateIndexedPath(base, index)
}

// createIndexedRegex は "name.ext" から ^name_\d+\.ext$ の正規表現を生成します。
func createIndexedRegex(fileName string) *regexp.Regexp {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	pattern := fmt.Sprintf(`^%s_\d+%s$`, regexp.QuoteMeta(baseName), regexp.QuoteMeta(ext))
	return regexp.MustCompile(pattern)
}
