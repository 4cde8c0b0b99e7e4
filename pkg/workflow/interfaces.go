package workflow

import (
	"context"

	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/publisher"

	imageports "github.com/shouni/gemini-image-kit/ports"
)

// Workflow は、キャプション生成と画像合成の各工程を担当する Runner を構築するためのインターフェースを定義します。
type Workflow interface {
	BuildCaptionRunner() (CaptionRunner, error)
	BuildComposeRunner() (ComposeRunner, error)
	BuildPublishRunner() (PublishRunner, error)
}

// CaptionRunner は、ページデータから 4 コマ分のキャプションを確定させる責務を持ちます。
type CaptionRunner interface {
	Run(ctx context.Context, page *domain.PageRecord) (domain.PanelCaptions, error)
	RunAndSave(ctx context.Context, page *domain.PageRecord, outputDir string) (domain.PanelCaptions, string, error)
}

// ComposeRunner は、ページ画像にキャプションを合成して出力する責務を持ちます。
type ComposeRunner interface {
	Run(ctx context.Context, page *domain.PageRecord) (*imageports.ImageResponse, error)
	RunDataURI(ctx context.Context, page *domain.PageRecord) (string, error)
	RunAndSave(ctx context.Context, pages []*domain.PageRecord, outputDir string) ([]string, error)
}

// PublishRunner は、確定したキャプションをページ台本として書き戻す責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, page *domain.PageRecord, imagePaths []string, outputDir string) (publisher.PublishResult, error)
	BuildMarkdown(page *domain.PageRecord) string
}
