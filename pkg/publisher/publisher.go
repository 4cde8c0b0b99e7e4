package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-caption-kit/pkg/asset"
	"github.com/shouni/go-caption-kit/pkg/domain"
)

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	ScriptPath string   // 書き戻したページ台本のパス
	ImagePaths []string // 台本から参照する合成画像のパス
}

// PagePublisher は確定したキャプションをページ台本の Markdown として書き戻します。
// 出力は parser.MarkdownParser でそのまま読み込める形式です。
type PagePublisher struct{}

// NewPagePublisher は PagePublisher を生成します。
func NewPagePublisher() *PagePublisher {
	return &PagePublisher{}
}

// Publish は Markdown を構築して outputDir に保存します。
// imagePaths の先頭が台本の image として参照されます。
func (p *PagePublisher) Publish(ctx context.Context, page *domain.PageRecord, imagePaths []string, outputDir string) (PublishResult, error) {
	result := PublishResult{ImagePaths: imagePaths}
	if page == nil {
		return result, fmt.Errorf("page データが nil です")
	}

	scriptPath, err := asset.ResolveOutputPath(outputDir, asset.DefaultScriptFileName)
	if err != nil {
		return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}

	// 台本と画像は同じディレクトリに置くので、相対パスで参照する
	image := ""
	if len(imagePaths) > 0 {
		image = filepath.Base(imagePaths[0])
	}
	content := p.BuildMarkdown(page, image)

	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		return result, fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(scriptPath, []byte(content), 0o644); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}
	result.ScriptPath = scriptPath

	slog.InfoContext(ctx, "ページ台本を書き出しました", "page_id", page.ID, "path", scriptPath)
	return result, nil
}

// BuildMarkdown はページ情報と確定キャプションを Markdown 文字列にします。
// image が空の場合は page.ImageURL を使います。
func (p *PagePublisher) BuildMarkdown(page *domain.PageRecord, image string) string {
	if image == "" {
		image = page.ImageURL
	}

	var sb strings.Builder
	title := page.Title
	if title == "" {
		title = page.ID
	}
	sb.WriteString(fmt.Sprintf("# %s\n", oneLine(title)))
	writeField(&sb, "image", image)
	writeField(&sb, "age", page.TargetAge)
	writeField(&sb, "theme", page.Theme)
	writeField(&sb, "text", page.Text)
	writeField(&sb, "image_prompt", page.ImagePrompt)

	scenes := page.Scenes()
	captions := page.DraftCaptions()
	if page.Captions != nil {
		captions = *page.Captions
	}

	for i, id := range domain.ReadingOrder {
		scene, text := scenes[i].ScenePrompt, captions.Get(id)
		if scene == "" && text == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n## Panel %s\n", id))
		writeField(&sb, "scene", scene)
		writeField(&sb, "caption", text)
	}
	return sb.String()
}

func writeField(sb *strings.Builder, key, value string) {
	if v := oneLine(value); v != "" {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", key, v))
	}
}

// oneLine は改行を含む値を 1 行にまとめます。
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
