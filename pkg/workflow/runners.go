package workflow

import (
	"github.com/shouni/go-caption-kit/pkg/publisher"
	"github.com/shouni/go-caption-kit/pkg/runner"
)

// BuildCaptionRunner は、ページ単位のキャプション確定を担当する Runner を作成します。
func (m *Manager) BuildCaptionRunner() (CaptionRunner, error) {
	if m.captionGen == nil {
		return nil, ErrCaptionUnavailable
	}
	return runner.NewCaptionRunner(m.cfg, m.captionGen), nil
}

// BuildComposeRunner は、キャプション合成と保存を担当する Runner を作成します。
func (m *Manager) BuildComposeRunner() (ComposeRunner, error) {
	return runner.NewComposeRunner(m.cfg, m.composer), nil
}

// BuildPublishRunner は、ページ台本の書き戻しを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	return runner.NewDefaultPublisherRunner(m.cfg, publisher.NewPagePublisher()), nil
}
