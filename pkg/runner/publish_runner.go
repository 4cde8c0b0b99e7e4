package runner

import (
	"context"

	"github.com/shouni/go-caption-kit/pkg/config"
	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/publisher"
)

// DefaultPublisherRunner は pkg/publisher を利用した標準実装です。
type DefaultPublisherRunner struct {
	cfg       config.Config
	publisher *publisher.PagePublisher
}

// NewDefaultPublisherRunner は DefaultPublisherRunner を初期化します。
func NewDefaultPublisherRunner(cfg config.Config, pub *publisher.PagePublisher) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{
		cfg:       cfg,
		publisher: pub,
	}
}

// Run は確定キャプションを含むページ台本を outputDir に書き出します。
func (pr *DefaultPublisherRunner) Run(ctx context.Context, page *domain.PageRecord, imagePaths []string, outputDir string) (publisher.PublishResult, error) {
	if outputDir == "" {
		outputDir = pr.cfg.OutputDir
	}
	return pr.publisher.Publish(ctx, page, imagePaths, outputDir)
}

// BuildMarkdown は保存処理を行わず、ページ台本の Markdown 文字列のみを返します。
func (pr *DefaultPublisherRunner) BuildMarkdown(page *domain.PageRecord) string {
	return pr.publisher.BuildMarkdown(page, "")
}
