package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-caption-kit/pkg/asset"
	"github.com/shouni/go-caption-kit/pkg/composer"
	"github.com/shouni/go-caption-kit/pkg/config"
	"github.com/shouni/go-caption-kit/pkg/domain"

	imageports "github.com/shouni/gemini-image-kit/ports"
)

// PageComposer はコマ画像にキャプションを合成します。
type PageComposer interface {
	Compose(ctx context.Context, opts composer.Options) (string, error)
	ComposeImage(ctx context.Context, opts composer.Options) (*imageports.ImageResponse, error)
}

// ComposeRunner はページ画像とキャプションを合成し、成果物を保存します。
type ComposeRunner struct {
	cfg      config.Config
	composer PageComposer
}

// NewComposeRunner は ComposeRunner を初期化します。
func NewComposeRunner(cfg config.Config, composer PageComposer) *ComposeRunner {
	return &ComposeRunner{
		cfg:      cfg,
		composer: composer,
	}
}

// Run は 1 ページ分の合成画像を生成します。
func (r *ComposeRunner) Run(ctx context.Context, page *domain.PageRecord) (*imageports.ImageResponse, error) {
	opts, err := r.options(page)
	if err != nil {
		return nil, err
	}
	resp, err := r.composer.ComposeImage(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("ページ %q の合成に失敗しました: %w", page.ID, err)
	}
	return resp, nil
}

// RunDataURI は合成画像を PNG の data URI として返します。
func (r *ComposeRunner) RunDataURI(ctx context.Context, page *domain.PageRecord) (string, error) {
	opts, err := r.options(page)
	if err != nil {
		return "", err
	}
	uri, err := r.composer.Compose(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("ページ %q の合成に失敗しました: %w", page.ID, err)
	}
	return uri, nil
}

// RunAndSave は複数ページを合成し、outputDir に連番付きの PNG として保存します。
func (r *ComposeRunner) RunAndSave(ctx context.Context, pages []*domain.PageRecord, outputDir string) ([]string, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("合成するページがありません")
	}
	if outputDir == "" {
		outputDir = r.cfg.OutputDir
	}

	var savedPaths []string
	for i, page := range pages {
		resp, err := r.Run(ctx, page)
		if err != nil {
			return savedPaths, err
		}

		// 例: captioned_page.png -> captioned_page_1.png
		pagePath, err := asset.PagePath(outputDir, i+1)
		if err != nil {
			return savedPaths, fmt.Errorf("ページ %d の出力パス生成に失敗しました: %w", i+1, err)
		}

		slog.InfoContext(ctx, "合成画像を保存しています",
			"index", i+1,
			"page_id", page.ID,
			"path", pagePath,
		)
		if err := writeFile(pagePath, resp.Data); err != nil {
			return savedPaths, fmt.Errorf("第 %d ページの保存に失敗しました: %w", i+1, err)
		}
		savedPaths = append(savedPaths, pagePath)
	}

	return savedPaths, nil
}

func (r *ComposeRunner) options(page *domain.PageRecord) (composer.Options, error) {
	if page == nil {
		return composer.Options{}, fmt.Errorf("page データが nil です")
	}
	if page.ImageURL == "" {
		return composer.Options{}, fmt.Errorf("ページ %q に画像が指定されていません", page.ID)
	}
	padding := r.cfg.PaddingRatio
	return composer.Options{
		ImageSource:        page.ImageURL,
		Captions:           page.Captions,
		FreeText:           page.Text,
		CaptionHeightRatio: r.cfg.CaptionHeightRatio,
		PaddingRatio:       &padding,
	}, nil
}
