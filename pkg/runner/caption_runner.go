package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-caption-kit/pkg/asset"
	"github.com/shouni/go-caption-kit/pkg/caption"
	"github.com/shouni/go-caption-kit/pkg/config"
	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/generator"
	"github.com/shouni/go-caption-kit/pkg/parser"
)

// ErrNoPageContent はキャプションの元になる情報がページに一切ない場合のエラーです。
var ErrNoPageContent = errors.New("page has no panels, text or image prompt")

// CaptionService は 4 コマ分のキャプションを生成するサービスです。
type CaptionService interface {
	Generate(ctx context.Context, req generator.CaptionRequest) (*generator.CaptionResult, error)
	Rules() caption.Rules
}

// CaptionRunner は 1 ページ分のキャプションを確定させます。
// 保存済みのキャプション、上流のパネル下書き、旧形式のページ本文の順に参照します。
type CaptionRunner struct {
	cfg     config.Config
	service CaptionService
}

// NewCaptionRunner は CaptionRunner を初期化します。
func NewCaptionRunner(cfg config.Config, service CaptionService) *CaptionRunner {
	return &CaptionRunner{
		cfg:     cfg,
		service: service,
	}
}

// Run はページのキャプションを確定させて返します。
// エラーを返すのは ctx が終了した場合と、ページに材料が何もない場合だけです。
func (r *CaptionRunner) Run(ctx context.Context, page *domain.PageRecord) (domain.PanelCaptions, error) {
	if page == nil {
		return domain.PanelCaptions{}, fmt.Errorf("page データが nil です")
	}
	logger := slog.With("page_id", page.ID)

	// 1. 保存済みのキャプションはそのまま使う
	if page.Captions != nil {
		logger.Info("保存済みのキャプションを再利用します")
		return *page.Captions, nil
	}

	// 2. 上流のパネル下書きがある場合
	if page.HasPanels() {
		scenes := page.Scenes()
		captions, err := r.fromDrafts(ctx, page, scenes)
		if err != nil {
			return domain.PanelCaptions{}, err
		}
		return r.ensureMinWords(ctx, page, scenes, captions)
	}

	// 3. 旧形式: 画像プロンプトからシーンを抽出して生成
	if strings.TrimSpace(page.ImagePrompt) != "" || strings.TrimSpace(page.Text) != "" {
		source := page.ImagePrompt
		if strings.TrimSpace(source) == "" {
			source = page.Text
		}
		logger.Warn("パネルデータがないため画像プロンプトからシーンを抽出します")
		scenes := parser.ExtractScenes(source)
		captions, err := r.generate(ctx, page, scenes)
		if err != nil {
			return domain.PanelCaptions{}, fmt.Errorf("キャプションの生成に失敗しました: %w", err)
		}
		return r.ensureMinWords(ctx, page, scenes, captions)
	}

	return domain.PanelCaptions{}, ErrNoPageContent
}

// RunAndSave はキャプションを確定させ、outputDir に JSON として保存します。
func (r *CaptionRunner) RunAndSave(ctx context.Context, page *domain.PageRecord, outputDir string) (domain.PanelCaptions, string, error) {
	captions, err := r.Run(ctx, page)
	if err != nil {
		return domain.PanelCaptions{}, "", err
	}

	path, err := asset.ResolveOutputPath(outputDir, asset.DefaultCaptionsFileName)
	if err != nil {
		return domain.PanelCaptions{}, "", fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	data, err := json.MarshalIndent(captions, "", "  ")
	if err != nil {
		return domain.PanelCaptions{}, "", fmt.Errorf("キャプションのエンコードに失敗しました: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return domain.PanelCaptions{}, "", err
	}

	slog.InfoContext(ctx, "キャプションを保存しました", "page_id", page.ID, "path", path)
	return captions, path, nil
}

// fromDrafts は下書きを正規化・検証し、不正な場合だけ再生成します。
func (r *CaptionRunner) fromDrafts(ctx context.Context, page *domain.PageRecord, scenes [domain.PanelCount]domain.PanelScene) (domain.PanelCaptions, error) {
	rules := r.service.Rules()
	drafts := rules.NormalizeAll(page.DraftCaptions())
	validation := rules.ValidateAll(drafts)
	if validation.Valid {
		slog.Info("パネル下書きのキャプションをそのまま採用します", "page_id", page.ID)
		return drafts, nil
	}

	slog.Warn("下書きの検証に失敗したためキャプションを再生成します",
		"page_id", page.ID,
		"errors", validation.Errors,
	)
	captions, err := r.generate(ctx, page, scenes)
	if err != nil {
		if ctx.Err() != nil {
			return domain.PanelCaptions{}, ctx.Err()
		}
		slog.Error("再生成に失敗したため固定キャプションを使います", "page_id", page.ID, "error", err)
		return caption.FallbackSet(), nil
	}
	return captions, nil
}

// ensureMinWords はページ全体の語数を確認し、不足していれば 1 回だけ再生成します。
func (r *CaptionRunner) ensureMinWords(ctx context.Context, page *domain.PageRecord, scenes [domain.PanelCount]domain.PanelScene, captions domain.PanelCaptions) (domain.PanelCaptions, error) {
	minWords := r.minPageWords()
	total := caption.TotalWords(captions)
	if total >= minWords {
		return captions, nil
	}

	logger := slog.With("page_id", page.ID, "min_words", minWords)
	logger.Warn("ページ全体の語数が不足しているため再生成します", "total_words", total)

	regenerated, err := r.generate(ctx, page, scenes)
	if err != nil {
		if ctx.Err() != nil {
			return domain.PanelCaptions{}, ctx.Err()
		}
		logger.Error("語数不足の再生成に失敗したため固定キャプションを使います", "error", err)
		return caption.VerboseFallbackSet(), nil
	}

	if n := caption.TotalWords(regenerated); n >= minWords {
		logger.Info("再生成で語数を満たしました", "total_words", n)
		return regenerated, nil
	}
	logger.Warn("再生成後も語数が不足しているため固定キャプションを使います",
		"total_words", caption.TotalWords(regenerated))
	return caption.VerboseFallbackSet(), nil
}

func (r *CaptionRunner) generate(ctx context.Context, page *domain.PageRecord, scenes [domain.PanelCount]domain.PanelScene) (domain.PanelCaptions, error) {
	targetAge := page.TargetAge
	if targetAge == "" {
		targetAge = r.cfg.TargetAge
	}
	res, err := r.service.Generate(ctx, generator.CaptionRequest{
		PageID:    page.ID,
		Scenes:    scenes,
		TargetAge: targetAge,
		Theme:     page.Theme,
	})
	if err != nil {
		return domain.PanelCaptions{}, err
	}
	return res.Captions, nil
}

func (r *CaptionRunner) minPageWords() int {
	if r.cfg.MinPageWords > 0 {
		return r.cfg.MinPageWords
	}
	return config.DefaultMinPageWords
}

// writeFile は親ディレクトリを作成してからファイルを書き込みます。
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました (path: %s): %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ファイルの書き込みに失敗しました (path: %s): %w", path, err)
	}
	return nil
}
